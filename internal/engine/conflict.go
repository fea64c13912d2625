package engine

import "github.com/campusops/timetable-api/internal/models"

// CheckConflict decides whether placing candidate would violate lecturer,
// batch-group, or hall exclusivity against the existing assignment set. It is
// the single source of truth for conflict detection: the generator, the
// alternative-slot finder, and change-request approval all go through it.
//
// Only assignments sharing the exact (day, interval, week) cell can conflict;
// slots are discrete and non-overlapping. Kinds are checked in priority order
// across the whole cell (lecturer, then batch group, then hall) and only the
// first match is reported. An entry with the candidate's own id is skipped so
// re-checking a committed assignment is a no-op. Exam-preparation rows are
// calendar markers without exclusivity and never conflict, on either side of
// the check.
func CheckConflict(candidate models.Assignment, existing []models.Assignment) models.Conflict {
	if candidate.SessionType == models.SessionExamPrep {
		return models.Conflict{Kind: models.ConflictNone}
	}

	var cell []models.Assignment
	for i := range existing {
		other := &existing[i]
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if other.SessionType == models.SessionExamPrep {
			continue
		}
		if other.Day != candidate.Day || other.Interval != candidate.Interval || other.Week != candidate.Week {
			continue
		}
		cell = append(cell, *other)
	}

	for _, other := range cell {
		if other.LecturerID == candidate.LecturerID {
			return conflict(models.ConflictLecturer, other)
		}
	}
	for _, other := range cell {
		if other.BatchID == candidate.BatchID && other.Group == candidate.Group {
			return conflict(models.ConflictBatchGroup, other)
		}
	}
	for _, other := range cell {
		if other.HallID == candidate.HallID {
			return conflict(models.ConflictHall, other)
		}
	}

	return models.Conflict{Kind: models.ConflictNone}
}

func conflict(kind models.ConflictKind, other models.Assignment) models.Conflict {
	return models.Conflict{
		Kind: kind,
		Detail: &models.ConflictDetail{
			AssignmentID: other.ID,
			LecturerName: other.LecturerName,
			ModuleName:   other.ModuleName,
			HallName:     other.HallName,
			BatchName:    other.BatchName,
			Group:        other.Group,
			Day:          other.Day,
			Interval:     other.Interval,
			Week:         other.Week,
		},
	}
}
