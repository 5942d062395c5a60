package leaguedomain

import "time"

// PlacementPolicy sizes the cohorts created by admission and reassignment.
type PlacementPolicy struct {
	DefaultCapacity  int
	DemotionCapacity int
	Window           time.Duration
}

func DefaultPlacementPolicy() PlacementPolicy {
	return PlacementPolicy{
		DefaultCapacity:  DefaultCapacity,
		DemotionCapacity: DemotionCapacity,
		Window:           DefaultWindow,
	}
}

// PlacementTarget says where a member lands next.
type PlacementTarget struct {
	TierOrder int
	// Fresh skips the search for an open cohort and always instances a new
	// one. Set when a demotion has nowhere lower to go.
	Fresh    bool
	Capacity int
}

// AdmissionTarget is the entry rung of the ladder.
func (p PlacementPolicy) AdmissionTarget(ladder Ladder) PlacementTarget {
	return PlacementTarget{TierOrder: ladder.Lowest(), Capacity: p.DefaultCapacity}
}

// TargetFor maps an outcome to the tier the member is placed into.
func (p PlacementPolicy) TargetFor(ladder Ladder, current int, outcome Outcome) PlacementTarget {
	switch outcome {
	case OutcomePromoted:
		if next, ok := ladder.NextAbove(current); ok {
			return PlacementTarget{TierOrder: next, Capacity: p.DefaultCapacity}
		}
	case OutcomeDemoted:
		if next, ok := ladder.NextBelow(current); ok {
			return PlacementTarget{TierOrder: next, Capacity: p.DefaultCapacity}
		}
		return PlacementTarget{TierOrder: ladder.Lowest(), Fresh: true, Capacity: p.DemotionCapacity}
	}
	if !ladder.Contains(current) {
		return PlacementTarget{TierOrder: clampToLadder(ladder, current), Capacity: p.DefaultCapacity}
	}
	return PlacementTarget{TierOrder: current, Capacity: p.DefaultCapacity}
}

// NewWindow returns the [start, end) window for a cohort created at now.
func (p PlacementPolicy) NewWindow(now time.Time) (time.Time, time.Time) {
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	start := now.UTC()
	return start, start.Add(window)
}

// clampToLadder moves an order that is no longer active for the scope to
// the nearest active rung below it, else the lowest.
func clampToLadder(ladder Ladder, order int) int {
	if below, ok := ladder.NextBelow(order); ok {
		return below
	}
	return ladder.Lowest()
}
