package leaguedomain

import (
	"fmt"
	"slices"
)

// Tier is one rung of the competitive ladder. Order 1 is the entry tier.
type Tier struct {
	Order int
	Name  string
}

// DefaultTiers is the ten-rung ladder seeded at install.
var DefaultTiers = []Tier{
	{Order: 1, Name: "Sprout"},
	{Order: 2, Name: "Seedling"},
	{Order: 3, Name: "Sapling"},
	{Order: 4, Name: "Bloom"},
	{Order: 5, Name: "Grove"},
	{Order: 6, Name: "Thicket"},
	{Order: 7, Name: "Timber"},
	{Order: 8, Name: "Canopy"},
	{Order: 9, Name: "Summit"},
	{Order: 10, Name: "Apex"},
}

// Registry is the immutable, ordered set of tier definitions.
type Registry struct {
	tiers []Tier
}

// NewRegistry validates that tiers are numbered 1..n without gaps.
func NewRegistry(tiers []Tier) (*Registry, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier registry: no tiers")
	}
	sorted := slices.Clone(tiers)
	slices.SortFunc(sorted, func(a, b Tier) int { return a.Order - b.Order })
	for i, t := range sorted {
		if t.Order != i+1 {
			return nil, fmt.Errorf("tier registry: expected order %d, got %d", i+1, t.Order)
		}
		if t.Name == "" {
			return nil, fmt.Errorf("tier registry: tier %d has no name", t.Order)
		}
	}
	return &Registry{tiers: sorted}, nil
}

// DefaultRegistry returns the registry built from DefaultTiers.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultTiers)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Tiers() []Tier { return slices.Clone(r.tiers) }

func (r *Registry) Lowest() Tier { return r.tiers[0] }

func (r *Registry) Highest() Tier { return r.tiers[len(r.tiers)-1] }

// Get returns the tier with the given order.
func (r *Registry) Get(order int) (Tier, bool) {
	if order < 1 || order > len(r.tiers) {
		return Tier{}, false
	}
	return r.tiers[order-1], true
}

// NextAbove returns the order one rung higher, or false at the apex.
func (r *Registry) NextAbove(order int) (int, bool) {
	if order < 1 || order >= len(r.tiers) {
		return 0, false
	}
	return order + 1, true
}

// NextBelow returns the order one rung lower, or false at the entry tier.
func (r *Registry) NextBelow(order int) (int, bool) {
	if order <= 1 || order > len(r.tiers) {
		return 0, false
	}
	return order - 1, true
}

// Ladder returns the registry restricted to the given orders. An empty
// restriction yields the full ladder. Orders unknown to the registry are
// ignored.
func (r *Registry) Ladder(active []int) Ladder {
	if len(active) == 0 {
		orders := make([]int, len(r.tiers))
		for i, t := range r.tiers {
			orders[i] = t.Order
		}
		return Ladder{registry: r, orders: orders}
	}
	orders := make([]int, 0, len(active))
	for _, o := range active {
		if _, ok := r.Get(o); ok && !slices.Contains(orders, o) {
			orders = append(orders, o)
		}
	}
	if len(orders) == 0 {
		return r.Ladder(nil)
	}
	slices.Sort(orders)
	return Ladder{registry: r, orders: orders}
}

// Ladder is the set of tiers active for one scope. Global scope always uses
// every tier; a company may be restricted to a subset.
type Ladder struct {
	registry *Registry
	orders   []int
}

func (l Ladder) Orders() []int { return slices.Clone(l.orders) }

func (l Ladder) Lowest() int { return l.orders[0] }

func (l Ladder) Highest() int { return l.orders[len(l.orders)-1] }

func (l Ladder) Contains(order int) bool { return slices.Contains(l.orders, order) }

// Tier resolves an order through the underlying registry.
func (l Ladder) Tier(order int) (Tier, bool) { return l.registry.Get(order) }

// NextAbove walks the registry upward until it finds an active order.
func (l Ladder) NextAbove(order int) (int, bool) {
	for next, ok := l.registry.NextAbove(order); ok; next, ok = l.registry.NextAbove(next) {
		if l.Contains(next) {
			return next, true
		}
	}
	return 0, false
}

// NextBelow walks the registry downward until it finds an active order.
func (l Ladder) NextBelow(order int) (int, bool) {
	for next, ok := l.registry.NextBelow(order); ok; next, ok = l.registry.NextBelow(next) {
		if l.Contains(next) {
			return next, true
		}
	}
	return 0, false
}

// Position classifies order within the ladder. When a ladder has a single
// rung the top-tier rule wins.
func (l Ladder) Position(order int) TierPosition {
	switch {
	case order >= l.Highest():
		return PositionTop
	case order <= l.Lowest():
		return PositionBottom
	default:
		return PositionMiddle
	}
}

// TierPosition is where a cohort's tier sits within its scope's ladder.
type TierPosition int

const (
	PositionMiddle TierPosition = iota
	PositionBottom
	PositionTop
)

func (p TierPosition) String() string {
	switch p {
	case PositionTop:
		return "top"
	case PositionBottom:
		return "bottom"
	default:
		return "middle"
	}
}
