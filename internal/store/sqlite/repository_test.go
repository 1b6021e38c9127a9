package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"oomsin/internal/core"
	"oomsin/internal/store"

	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "oomsin.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testTxn(kind core.Kind, title string, satang int64, at time.Time) core.Transaction {
	return core.Transaction{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Category:  title,
		Amount:    core.Money{Satang: satang},
		Note:      core.DefaultNote,
		CreatedAt: at,
	}
}

func TestCategoriesSeeded(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exp, err := repo.ListCategories(ctx, core.Expense)
	if err != nil {
		t.Fatalf("list expense categories: %v", err)
	}
	inc, err := repo.ListCategories(ctx, core.Income)
	if err != nil {
		t.Fatalf("list income categories: %v", err)
	}
	if len(exp) != 7 || len(inc) != 4 {
		t.Fatalf("unexpected seed counts: %d expense, %d income", len(exp), len(inc))
	}
	if exp[0].Name != "ค่าอาหาร" {
		t.Fatalf("unexpected first expense category: %q", exp[0].Name)
	}
}

func TestAppendAndListMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	nov := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC)
	for _, tx := range []core.Transaction{
		testTxn(core.Expense, "ค่าอาหาร", 10000, nov),
		testTxn(core.Expense, "ค่าเดินทาง", 5000, nov.Add(time.Hour)),
		testTxn(core.Expense, "ค่าอาหาร", 7000, dec),
		testTxn(core.Income, "เงินเดือน", 3000000, nov),
	} {
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.ListMonth(ctx, core.Expense, 2025, 11)
	if err != nil {
		t.Fatalf("list month: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 November expenses, got %d", len(got))
	}
	// Store-assigned order: insertion order.
	if got[0].Title != "ค่าอาหาร" || got[1].Title != "ค่าเดินทาง" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
	if !got[0].CreatedAt.Equal(nov) {
		t.Fatalf("timestamp did not round-trip: %v", got[0].CreatedAt)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	bad := testTxn(core.Expense, "ค่าอาหาร", 0, time.Now().UTC())
	if err := repo.AppendTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := testTxn(core.Expense, "สังคม", 2500, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC))
	if err := repo.AppendTransaction(ctx, tx); err != nil {
		t.Fatalf("append: %v", err)
	}

	deleted, err := repo.DeleteTransaction(ctx, core.Expense, tx.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != tx.ID || deleted.Amount.Satang != 2500 {
		t.Fatalf("unexpected deleted record: %+v", deleted)
	}

	if _, err := repo.DeleteTransaction(ctx, core.Expense, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListAfter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t0 := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.AppendTransaction(ctx, testTxn(core.Expense, "ค่าอาหาร", 100, t0.Add(-time.Hour))); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.AppendTransaction(ctx, testTxn(core.Expense, "ค่าอาหาร", 200, t0.Add(time.Hour))); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListAfter(ctx, "ค่าอาหาร", t0)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(got) != 1 || got[0].Amount.Satang != 200 {
		t.Fatalf("expected only the later transaction, got %+v", got)
	}
}

func TestListCreatedAfter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t0 := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range []core.Transaction{
		testTxn(core.Expense, "ค่าเช่าบ้าน", 900000, t0.Add(-time.Hour)),
		// Different months, both past the cutoff.
		testTxn(core.Expense, "ค่าอาหาร", 200, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)),
		testTxn(core.Expense, "ค่าเดินทาง", 100, t0.Add(time.Hour)),
		testTxn(core.Income, "เงินเดือน", 3000000, t0.Add(time.Hour)),
	} {
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.ListCreatedAfter(ctx, core.Expense, t0)
	if err != nil {
		t.Fatalf("list created after: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses past the cutoff, got %d", len(got))
	}
	// Oldest first, regardless of insertion order.
	if got[0].Title != "ค่าเดินทาง" || got[1].Title != "ค่าอาหาร" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestPutGoalCreateOrReplace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t0 := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	first := core.Goal{
		ID:              uuid.NewString(),
		Title:           "ค่าอาหาร",
		Amount:          core.Money{Satang: 100000},
		RemainingAmount: core.Money{Satang: 100000},
		CreatedAt:       t0,
	}
	stored, err := repo.PutGoal(ctx, first)
	if err != nil {
		t.Fatalf("put goal: %v", err)
	}

	// Replacing keeps the original identity and creation time.
	second := first
	second.ID = uuid.NewString()
	second.Amount = core.Money{Satang: 50000}
	second.RemainingAmount = core.Money{Satang: 50000}
	second.CreatedAt = t0.Add(time.Hour)
	replaced, err := repo.PutGoal(ctx, second)
	if err != nil {
		t.Fatalf("replace goal: %v", err)
	}
	if replaced.ID != stored.ID {
		t.Fatalf("replace changed goal id: %s vs %s", replaced.ID, stored.ID)
	}
	if !replaced.CreatedAt.Equal(t0) {
		t.Fatalf("replace changed creation time: %v", replaced.CreatedAt)
	}
	if replaced.Amount.Satang != 50000 {
		t.Fatalf("replace did not update amount: %d", replaced.Amount.Satang)
	}

	goals, err := repo.ListGoals(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected exactly one goal, got %d", len(goals))
	}
}

func TestUpdateGoalAmountsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateGoalAmounts(context.Background(), uuid.NewString(),
		core.Money{Satang: 1}, core.Money{Satang: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteGoal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := core.Goal{
		ID:              uuid.NewString(),
		Title:           "ค่าเดินทาง",
		Amount:          core.Money{Satang: 5000},
		RemainingAmount: core.Money{Satang: 5000},
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := repo.PutGoal(ctx, g); err != nil {
		t.Fatalf("put goal: %v", err)
	}

	deleted, err := repo.DeleteGoal(ctx, g.ID)
	if err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if deleted.Title != g.Title {
		t.Fatalf("unexpected deleted goal: %+v", deleted)
	}
	if _, err := repo.DeleteGoal(ctx, g.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
