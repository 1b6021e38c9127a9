// Package memory implements the store ports with mutex-guarded slices. It is
// the default dev backend and what the service and HTTP tests run against.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"oomsin/internal/core"
	"oomsin/internal/store"
)

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	txns  []core.Transaction
	goals []core.Goal
}

// SeedCategories mirrors the category sets the mobile app ships with.
var SeedCategories = []core.Category{
	{ID: "exp-food", Name: "ค่าอาหาร", Kind: core.Expense},
	{ID: "exp-travel", Name: "ค่าเดินทาง", Kind: core.Expense},
	{ID: "exp-social", Name: "สังคม", Kind: core.Expense},
	{ID: "exp-rent", Name: "ค่าเช่าบ้าน", Kind: core.Expense},
	{ID: "exp-fashion", Name: "แฟชั่น", Kind: core.Expense},
	{ID: "exp-health", Name: "สุขภาพ", Kind: core.Expense},
	{ID: "exp-stuff", Name: "สิ่งของ", Kind: core.Expense},
	{ID: "inc-salary", Name: "เงินเดือน", Kind: core.Income},
	{ID: "inc-bonus", Name: "โบนัส", Kind: core.Income},
	{ID: "inc-dividend", Name: "เงินปันผล", Kind: core.Income},
	{ID: "inc-side", Name: "รายได้จากงานเสริม", Kind: core.Income},
}

func New() *Store {
	return &Store{cats: append([]core.Category(nil), SeedCategories...)}
}

var _ store.Store = (*Store)(nil)

func (s *Store) ListCategories(_ context.Context, kind core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) AppendTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	return nil
}

func (s *Store) ListMonth(_ context.Context, kind core.Kind, year, month int) ([]core.Transaction, error) {
	from, to := core.MonthWindow(year, month)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if t.Kind == kind && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ListCreatedAfter(_ context.Context, kind core.Kind, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if t.Kind == kind && t.CreatedAt.After(since) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListAfter(_ context.Context, title string, since time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.txns {
		if t.Title == title && t.CreatedAt.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txns {
		if t.Kind == kind && t.ID == id {
			s.txns = append(s.txns[:i], s.txns[i+1:]...)
			return t, nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) GetGoalByTitle(_ context.Context, title string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.goals {
		if g.Title == title {
			return g, nil
		}
	}
	return core.Goal{}, store.ErrNotFound
}

func (s *Store) PutGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.goals {
		if existing.Title == g.Title {
			// Keep the stored identity; overwrite the rest in place.
			g.ID = existing.ID
			g.CreatedAt = existing.CreatedAt
			s.goals[i] = g
			return g, nil
		}
	}
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) UpdateGoalAmounts(_ context.Context, id string, amount, remaining core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id {
			s.goals[i].Amount = amount
			s.goals[i].RemainingAmount = remaining
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			return g, nil
		}
	}
	return core.Goal{}, store.ErrNotFound
}
