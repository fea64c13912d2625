package engine

import (
	"math"

	"github.com/campusops/timetable-api/internal/models"
)

// SessionDemand describes how many weekly sessions a (batch, module) pair
// requires and how many parallel groups must be scheduled.
type SessionDemand struct {
	SessionsPerWeek int `json:"sessions_per_week"`
	GroupCount      int `json:"group_count"`
	PerGroupSize    int `json:"per_group_size"`
}

// Demand derives session demand from catalog state. Each session occupies one
// fixed 2-hour interval: labs meet once weekly regardless of credit hours,
// other modules meet up to twice. Degenerate input (non-positive credit hours,
// unknown batch mode) yields zero demand rather than an error; the caller is
// expected to log and skip.
func Demand(module models.Module, batch models.Batch, largestHallCapacity int) SessionDemand {
	groups := groupCount(batch, largestHallCapacity)
	demand := SessionDemand{
		GroupCount:   groups,
		PerGroupSize: ceilDiv(batch.StudentCount, groups),
	}

	if module.CreditHours <= 0 || len(batch.Mode.Days()) == 0 {
		return demand
	}

	if module.IsLab {
		demand.SessionsPerWeek = 1
		return demand
	}
	sessions := ceilDiv(module.CreditHours, models.SessionHours)
	if sessions > 2 {
		sessions = 2
	}
	demand.SessionsPerWeek = sessions
	return demand
}

// groupCount splits the batch into however many parallel sections the largest
// available room can hold, clamped to the batch's declared group count.
func groupCount(batch models.Batch, largestHallCapacity int) int {
	groups := 1
	if largestHallCapacity > 0 && batch.StudentCount > 0 {
		groups = ceilDiv(batch.StudentCount, largestHallCapacity)
	}
	if batch.GroupCount >= 1 && groups > batch.GroupCount {
		groups = batch.GroupCount
	}
	if groups < 1 {
		groups = 1
	}
	return groups
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(float64(a) / float64(b)))
}
