package engine

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusops/timetable-api/internal/models"
)

// IssueKind classifies a structural infeasibility found before generation.
type IssueKind string

const (
	IssueNoQualifiedLecturer IssueKind = "NO_QUALIFIED_LECTURER"
	IssueNoCapableHall       IssueKind = "NO_CAPABLE_HALL"
	IssueCreditOverflow      IssueKind = "CREDIT_OVERFLOW"
)

// ValidationIssue describes one reason a generation request cannot run.
// Issues are collected, not short-circuited, so the caller can display all
// problems at once.
type ValidationIssue struct {
	Kind       IssueKind `json:"kind"`
	BatchID    string    `json:"batch_id,omitempty"`
	BatchName  string    `json:"batch_name,omitempty"`
	ModuleID   string    `json:"module_id,omitempty"`
	ModuleName string    `json:"module_name,omitempty"`
	Message    string    `json:"message"`
}

// UnderScheduled records a (batch, module, group) whose weekly demand could
// not be fully placed within the attempt bound. Non-fatal.
type UnderScheduled struct {
	BatchID    string `json:"batch_id"`
	BatchName  string `json:"batch_name"`
	ModuleID   string `json:"module_id"`
	ModuleName string `json:"module_name"`
	Group      int    `json:"group"`
	Placed     int    `json:"placed"`
	Required   int    `json:"required"`
}

// Result carries the outcome of a generation run. When Issues is non-empty
// the run was rejected up front and Assignments is empty; Warnings reflect
// partial success and never abort the run.
type Result struct {
	Assignments []models.Assignment `json:"assignments"`
	Warnings    []UnderScheduled    `json:"warnings"`
	Issues      []ValidationIssue   `json:"issues"`
}

// GeneratorConfig tunes the bounded greedy placement loop.
type GeneratorConfig struct {
	// MaxAttempts is a backstop bound on the per-group placement loop. The
	// loop normally ends earlier, either by covering demand or when a full
	// scan of the slot space finds nothing.
	MaxAttempts   int
	TermWeeks     int
	ExamPrepWeeks int
}

// Generator produces a maximal conflict-free assignment set covering demand
// as completely as possible. It is greedy with bounded retry: the interactive
// context tolerates partial failure, so unplaceable demand becomes a warning
// instead of failing the run.
type Generator struct {
	cfg    GeneratorConfig
	logger *zap.Logger
}

// NewGenerator constructs a generator, applying defaults for zero config.
func NewGenerator(cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.TermWeeks <= 0 {
		cfg.TermWeeks = 16
	}
	if cfg.ExamPrepWeeks < 0 || cfg.ExamPrepWeeks >= cfg.TermWeeks {
		cfg.ExamPrepWeeks = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// Generate builds the weekly assignment template for the catalog. Validation
// issues abort the whole run before any placement happens.
func (g *Generator) Generate(catalog *models.Catalog) Result {
	if issues := g.Validate(catalog); len(issues) > 0 {
		return Result{Issues: issues}
	}

	largest := catalog.LargestHallCapacity()
	var existing []models.Assignment
	var warnings []UnderScheduled

	for _, batch := range catalog.Batches {
		for _, moduleID := range batch.ModuleIDs {
			module := catalog.Module(moduleID)
			if module == nil {
				g.logger.Warn("enrolled module missing from catalog",
					zap.String("batch_id", batch.ID), zap.String("module_id", moduleID))
				continue
			}
			demand := Demand(*module, batch, largest)
			if demand.SessionsPerWeek == 0 {
				g.logger.Warn("module yields zero session demand",
					zap.String("module_id", module.ID), zap.Int("credit_hours", module.CreditHours),
					zap.String("batch_mode", string(batch.Mode)))
				continue
			}
			for group := 1; group <= demand.GroupCount; group++ {
				placed := g.placeGroup(catalog, batch, *module, group, demand, &existing)
				if placed < demand.SessionsPerWeek {
					warnings = append(warnings, UnderScheduled{
						BatchID:    batch.ID,
						BatchName:  batch.Name,
						ModuleID:   module.ID,
						ModuleName: module.Name,
						Group:      group,
						Placed:     placed,
						Required:   demand.SessionsPerWeek,
					})
				}
			}
		}
	}

	return Result{Assignments: existing, Warnings: warnings}
}

// placeGroup runs the bounded attempt loop for one (batch, module, group) and
// returns how many sessions it committed.
func (g *Generator) placeGroup(catalog *models.Catalog, batch models.Batch, module models.Module, group int, demand SessionDemand, existing *[]models.Assignment) int {
	scheduled := 0
	for attempts := 0; scheduled < demand.SessionsPerWeek && attempts < g.cfg.MaxAttempts; attempts++ {
		candidate, ok := g.findPlacement(catalog, batch, module, group, demand.PerGroupSize, *existing)
		if !ok {
			// A full scan of the slot space found nothing; rescanning
			// the unchanged state cannot succeed either.
			break
		}
		*existing = append(*existing, candidate)
		scheduled++
	}
	return scheduled
}

// findPlacement scans the batch's slot space day-major and returns the first
// (day, interval, lecturer, hall) combination that passes the conflict check.
func (g *Generator) findPlacement(catalog *models.Catalog, batch models.Batch, module models.Module, group, perGroupSize int, existing []models.Assignment) (models.Assignment, bool) {
	for _, day := range batch.Mode.Days() {
		for interval := 1; interval <= models.IntervalsPerDay; interval++ {
			lecturer := freeQualifiedLecturer(catalog, module.ID, day, interval, existing)
			if lecturer == nil {
				continue
			}
			hall := freeCapableHall(catalog, module, perGroupSize, day, interval, existing)
			if hall == nil {
				continue
			}
			candidate := models.Assignment{
				ID:           uuid.NewString(),
				BatchID:      batch.ID,
				BatchName:    batch.Name,
				Group:        group,
				ModuleID:     module.ID,
				ModuleName:   module.Name,
				LecturerID:   lecturer.ID,
				LecturerName: lecturer.Name,
				HallID:       hall.ID,
				HallName:     hall.Name,
				Day:          day,
				Interval:     interval,
				Week:         1,
				SessionType:  models.SessionRegular,
			}
			if CheckConflict(candidate, existing).HasConflict() {
				continue
			}
			return candidate, true
		}
	}
	return models.Assignment{}, false
}

// freeQualifiedLecturer returns the first lecturer qualified for the module
// with no assignment at the cell, or nil.
func freeQualifiedLecturer(catalog *models.Catalog, moduleID string, day models.Day, interval int, existing []models.Assignment) *models.Lecturer {
	for i := range catalog.Lecturers {
		lecturer := &catalog.Lecturers[i]
		if !lecturer.QualifiedFor(moduleID) {
			continue
		}
		if cellOccupied(existing, day, interval, func(a models.Assignment) bool { return a.LecturerID == lecturer.ID }) {
			continue
		}
		return lecturer
	}
	return nil
}

// freeCapableHall returns the first unoccupied hall that fits the group. Lab
// halls are tried first for lab modules; capacity is the only hard rule.
func freeCapableHall(catalog *models.Catalog, module models.Module, perGroupSize int, day models.Day, interval int, existing []models.Assignment) *models.Hall {
	pick := func(preferLab bool) *models.Hall {
		for i := range catalog.Halls {
			hall := &catalog.Halls[i]
			if preferLab != (hall.Type == models.HallTypeLab) {
				continue
			}
			if hall.Capacity < perGroupSize {
				continue
			}
			if cellOccupied(existing, day, interval, func(a models.Assignment) bool { return a.HallID == hall.ID }) {
				continue
			}
			return hall
		}
		return nil
	}
	if module.IsLab {
		if hall := pick(true); hall != nil {
			return hall
		}
		return pick(false)
	}
	if hall := pick(false); hall != nil {
		return hall
	}
	return pick(true)
}

func cellOccupied(existing []models.Assignment, day models.Day, interval int, match func(models.Assignment) bool) bool {
	for _, a := range existing {
		if a.Day == day && a.Interval == interval && a.Week == 1 && match(a) {
			return true
		}
	}
	return false
}

// Validate runs the pre-generation guard and reports every structural
// infeasibility as a typed issue.
func (g *Generator) Validate(catalog *models.Catalog) []ValidationIssue {
	var issues []ValidationIssue
	largest := catalog.LargestHallCapacity()

	seenModules := make(map[string]bool)
	for _, batch := range catalog.Batches {
		for _, moduleID := range batch.ModuleIDs {
			module := catalog.Module(moduleID)
			if module == nil || seenModules[moduleID] {
				continue
			}
			seenModules[moduleID] = true
			if len(catalog.QualifiedLecturers(moduleID)) == 0 {
				issues = append(issues, ValidationIssue{
					Kind:       IssueNoQualifiedLecturer,
					ModuleID:   module.ID,
					ModuleName: module.Name,
					Message:    fmt.Sprintf("module %s has no qualified lecturers", module.Name),
				})
			}
		}
	}

	for _, batch := range catalog.Batches {
		demand := groupCount(batch, largest)
		perGroup := ceilDiv(batch.StudentCount, demand)
		capable := false
		for _, hall := range catalog.Halls {
			if hall.Capacity >= perGroup {
				capable = true
				break
			}
		}
		if !capable {
			issues = append(issues, ValidationIssue{
				Kind:      IssueNoCapableHall,
				BatchID:   batch.ID,
				BatchName: batch.Name,
				Message:   fmt.Sprintf("no hall holds %d students required per group of batch %s", perGroup, batch.Name),
			})
		}

		budget := len(batch.Mode.Days()) * models.IntervalsPerDay * models.SessionHours
		hours := 0
		for _, moduleID := range batch.ModuleIDs {
			module := catalog.Module(moduleID)
			if module == nil {
				continue
			}
			hours += Demand(*module, batch, largest).SessionsPerWeek * models.SessionHours
		}
		if hours > budget {
			issues = append(issues, ValidationIssue{
				Kind:      IssueCreditOverflow,
				BatchID:   batch.ID,
				BatchName: batch.Name,
				Message:   fmt.Sprintf("batch %s demands %d weekly hours but only %d are available", batch.Name, hours, budget),
			})
		}
	}

	return issues
}

// ExpandTerm materialises the weekly template across the full term. Sessions
// in the final exam-preparation weeks are re-tagged and pinned to the
// canonical interval; this is a plain transform over the committed set, not
// part of the conflict-aware placement loop.
func (g *Generator) ExpandTerm(weekly []models.Assignment) []models.Assignment {
	firstExamWeek := g.cfg.TermWeeks - g.cfg.ExamPrepWeeks + 1
	full := make([]models.Assignment, 0, len(weekly)*g.cfg.TermWeeks)
	for week := 1; week <= g.cfg.TermWeeks; week++ {
		for _, a := range weekly {
			instance := a
			instance.Week = week
			if week > 1 {
				instance.ID = uuid.NewString()
			}
			if week >= firstExamWeek {
				instance.SessionType = models.SessionExamPrep
				instance.Interval = models.ExamPrepInterval
			}
			full = append(full, instance)
		}
	}
	return full
}
