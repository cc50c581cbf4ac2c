// Package migration holds the reschedule decision rule. It is pure: no
// store access, no clock, just the migration count.
package migration

// DefaultLimit is how many times a lineage may be rescheduled before
// further migrations are refused.
const DefaultLimit = 3

type Policy struct {
	Limit int
}

func NewPolicy(limit int) Policy {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Policy{Limit: limit}
}

// Decision reports whether a reschedule may proceed. NewCount is always
// the incremented count, including on rejection: the API reports the
// count that would have resulted, not the stored one.
type Decision struct {
	Allowed  bool
	NewCount int
	Reason   string
}

// Decide increments the lineage's migration count and checks it against
// the limit. The check runs on the incremented value: a task on count
// limit-1 is already unreschedulable, and rejections report the count
// the reschedule would have produced.
func (p Policy) Decide(currentCount int) Decision {
	newCount := currentCount + 1
	if newCount >= p.Limit {
		return Decision{
			Allowed:  false,
			NewCount: newCount,
			Reason:   "migration limit reached",
		}
	}
	return Decision{Allowed: true, NewCount: newCount}
}
