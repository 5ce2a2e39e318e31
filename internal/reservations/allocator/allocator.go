package allocator

import (
	"context"
	"fmt"
	"slices"

	"restobook/internal/reservations/availability"
	"restobook/internal/reservations/rules"
	"restobook/pkg/model"
)

// MaxMergeTables caps how many tables may be joined for one party.
const MaxMergeTables = 3

type Kind int

const (
	Unavailable Kind = iota
	Single
	Merged
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Merged:
		return "merged"
	default:
		return "unavailable"
	}
}

// Result is the outcome of an allocation. Tables is empty when Kind is Unavailable;
// for a merge the first table is the primary one.
type Result struct {
	Kind   Kind
	Tables []*model.Table
}

func (r Result) Found() bool {
	return r.Kind != Unavailable
}

func (r Result) PrimaryID() int {
	if len(r.Tables) == 0 {
		return 0
	}
	return r.Tables[0].ID
}

// MergedIDs returns the ids beyond the primary table.
func (r Result) MergedIDs() []int {
	if len(r.Tables) < 2 {
		return nil
	}
	ids := make([]int, 0, len(r.Tables)-1)
	for _, t := range r.Tables[1:] {
		ids = append(ids, t.ID)
	}
	return ids
}

func (r Result) Capacity() int {
	return model.TotalCapacity(r.Tables)
}

// TableFinder is the slice of the table store the allocator reads.
type TableFinder interface {
	FindByZoneAndMinCapacity(ctx context.Context, zone model.Zone, minCapacity int) ([]*model.Table, error)
}

type findOptions struct {
	exclude  []int
	ignoreID string
}

type Option func(*findOptions)

// ExcludeTables keeps the given tables out of every candidate set.
func ExcludeTables(ids ...int) Option {
	return func(o *findOptions) {
		o.exclude = append(o.exclude, ids...)
	}
}

// IgnoreReservation treats the tables held by reservation id as free.
func IgnoreReservation(id string) Option {
	return func(o *findOptions) {
		o.ignoreID = id
	}
}

type Allocator struct {
	tables   TableFinder
	checker  *availability.Checker
	duration rules.DurationPolicy
}

func New(tables TableFinder, checker *availability.Checker, duration rules.DurationPolicy) *Allocator {
	return &Allocator{tables: tables, checker: checker, duration: duration}
}

// FindTable picks the smallest free table in zone seating partySize. Only when no
// single table fits does it look for a merge of two, then three, tables.
// date must be normalized and startTime HH:MM.
func (a *Allocator) FindTable(ctx context.Context, partySize int, zone model.Zone, date, startTime string, opts ...Option) (Result, error) {
	o := findOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	durationMin, err := a.duration.EstimateAt(partySize, startTime)
	if err != nil {
		return Result{}, err
	}

	singles, err := a.freeTables(ctx, zone, partySize, date, startTime, durationMin, o)
	if err != nil {
		return Result{}, err
	}
	if len(singles) > 0 {
		slices.SortFunc(singles, byCapacityAsc)
		return Result{Kind: Single, Tables: singles[:1]}, nil
	}

	candidates, err := a.freeTables(ctx, zone, 1, date, startTime, durationMin, o)
	if err != nil {
		return Result{}, err
	}
	slices.SortFunc(candidates, byCapacityDesc)

	for size := 2; size <= MaxMergeTables; size++ {
		if combo := firstCombination(candidates, size, partySize); combo != nil {
			return Result{Kind: Merged, Tables: combo}, nil
		}
	}
	return Result{Kind: Unavailable}, nil
}

// AvailableTables lists every free table in zone that seats partySize on its own,
// smallest first.
func (a *Allocator) AvailableTables(ctx context.Context, partySize int, zone model.Zone, date, startTime string, opts ...Option) ([]*model.Table, error) {
	o := findOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	durationMin, err := a.duration.EstimateAt(partySize, startTime)
	if err != nil {
		return nil, err
	}
	tables, err := a.freeTables(ctx, zone, partySize, date, startTime, durationMin, o)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tables, byCapacityAsc)
	return tables, nil
}

func (a *Allocator) freeTables(ctx context.Context, zone model.Zone, minCapacity int, date, startTime string, durationMin int, o findOptions) ([]*model.Table, error) {
	tables, err := a.tables.FindByZoneAndMinCapacity(ctx, zone, minCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s tables: %w", zone, err)
	}

	tables = slices.DeleteFunc(slices.Clone(tables), func(t *model.Table) bool {
		return t.Zone != zone || t.Capacity < minCapacity || slices.Contains(o.exclude, t.ID)
	})

	var checkOpts []availability.Option
	if o.ignoreID != "" {
		checkOpts = append(checkOpts, availability.IgnoreReservation(o.ignoreID))
	}
	return a.checker.FreeTables(ctx, tables, date, startTime, durationMin, checkOpts...)
}

// firstCombination walks the size-k combinations of tables in lexicographic index
// order and returns the first whose capacity reaches partySize.
func firstCombination(tables []*model.Table, k, partySize int) []*model.Table {
	if k > len(tables) {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		sum := 0
		for _, i := range idx {
			sum += tables[i].Capacity
		}
		if sum >= partySize {
			combo := make([]*model.Table, k)
			for j, i := range idx {
				combo[j] = tables[i]
			}
			return combo
		}

		// advance to the next combination
		pos := k - 1
		for pos >= 0 && idx[pos] == len(tables)-k+pos {
			pos--
		}
		if pos < 0 {
			return nil
		}
		idx[pos]++
		for j := pos + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func byCapacityAsc(a, b *model.Table) int {
	if a.Capacity != b.Capacity {
		return a.Capacity - b.Capacity
	}
	return a.ID - b.ID
}

func byCapacityDesc(a, b *model.Table) int {
	if a.Capacity != b.Capacity {
		return b.Capacity - a.Capacity
	}
	return a.ID - b.ID
}
