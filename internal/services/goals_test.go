package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"oomsin/internal/core"
	"oomsin/internal/store"
	"oomsin/internal/store/memory"
)

func appendTxn(t *testing.T, st *memory.Store, title string, satang int64, at time.Time) {
	t.Helper()
	err := st.AppendTransaction(context.Background(), core.Transaction{
		ID:        uuid.NewString(),
		Kind:      core.Expense,
		Title:     title,
		Category:  title,
		Amount:    core.Money{Satang: satang},
		Note:      core.DefaultNote,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
}

func TestGoalService_SaveReplacesByTitle(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewGoalService(st, store.NewFeed(), nil)

	first, err := svc.Save(ctx, GoalInput{Title: "ค่าอาหาร", Amount: core.Money{Satang: 100000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second, err := svc.Save(ctx, GoalInput{Title: "ค่าอาหาร", Amount: core.Money{Satang: 250000}})
	if err != nil {
		t.Fatalf("Save() replace error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Save() replace changed ID from %q to %q", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Save() replace changed CreatedAt from %v to %v", first.CreatedAt, second.CreatedAt)
	}

	goals, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("List() returned %d goals after replace, want 1", len(goals))
	}
	if goals[0].Amount.Satang != 250000 {
		t.Errorf("List() Amount = %d, want 250000", goals[0].Amount.Satang)
	}
}

func TestGoalService_SaveValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), store.NewFeed(), nil)

	if _, err := svc.Save(ctx, GoalInput{Title: " ", Amount: core.Money{Satang: 100}}); !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("Save() empty title error = %v, want ErrEmptyTitle", err)
	}
	if _, err := svc.Save(ctx, GoalInput{Title: "x", Amount: core.Money{Satang: 0}}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Save() zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestGoalService_ListRecomputesRemaining(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewGoalService(st, store.NewFeed(), nil)

	g, err := svc.Save(ctx, GoalInput{Title: "ค่าอาหาร", Amount: core.Money{Satang: 100000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// One matching spend after the goal, one before it, one off-title.
	appendTxn(t, st, "ค่าอาหาร", 20000, g.CreatedAt.Add(time.Minute))
	appendTxn(t, st, "ค่าอาหาร", 99999, g.CreatedAt.Add(-time.Minute))
	appendTxn(t, st, "ค่าเดินทาง", 5000, g.CreatedAt.Add(time.Minute))

	goals, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("List() returned %d goals, want 1", len(goals))
	}
	if goals[0].RemainingAmount.Satang != 80000 {
		t.Errorf("List() RemainingAmount = %d, want 80000", goals[0].RemainingAmount.Satang)
	}

	got, err := svc.Get(ctx, "ค่าอาหาร")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RemainingAmount.Satang != 80000 {
		t.Errorf("Get() RemainingAmount = %d, want 80000", got.RemainingAmount.Satang)
	}
}

func TestGoalService_TopUp(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), store.NewFeed(), nil)

	g, err := svc.Save(ctx, GoalInput{Title: "ค่าเช่าบ้าน", Amount: core.Money{Satang: 100000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	topped, err := svc.TopUp(ctx, "ค่าเช่าบ้าน", core.Money{Satang: 50000})
	if err != nil {
		t.Fatalf("TopUp() error = %v", err)
	}
	if topped.ID != g.ID {
		t.Errorf("TopUp() ID = %q, want %q", topped.ID, g.ID)
	}
	if topped.Amount.Satang != 150000 {
		t.Errorf("TopUp() Amount = %d, want 150000", topped.Amount.Satang)
	}
	if topped.RemainingAmount.Satang != 150000 {
		t.Errorf("TopUp() RemainingAmount = %d, want 150000", topped.RemainingAmount.Satang)
	}
}

func TestGoalService_TopUpCreatesMissingGoal(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), store.NewFeed(), nil)

	g, err := svc.TopUp(ctx, "สุขภาพ", core.Money{Satang: 30000})
	if err != nil {
		t.Fatalf("TopUp() error = %v", err)
	}
	if g.Amount.Satang != 30000 || g.RemainingAmount.Satang != 30000 {
		t.Errorf("TopUp() created goal = %+v, want amount and remaining 30000", g)
	}

	goals, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(goals) != 1 {
		t.Errorf("List() returned %d goals, want 1", len(goals))
	}
}

func TestGoalService_TopUpValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), store.NewFeed(), nil)

	if _, err := svc.TopUp(ctx, "x", core.Money{Satang: 0}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("TopUp() zero amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestGoalService_RecomputePersistsDrift(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewGoalService(st, store.NewFeed(), nil)

	g, err := svc.Save(ctx, GoalInput{Title: "ค่าอาหาร", Amount: core.Money{Satang: 100000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	appendTxn(t, st, "ค่าอาหาร", 40000, g.CreatedAt.Add(time.Minute))

	changed, err := svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if changed != 1 {
		t.Errorf("Recompute() changed = %d, want 1", changed)
	}

	stored, err := st.GetGoalByTitle(ctx, "ค่าอาหาร")
	if err != nil {
		t.Fatalf("GetGoalByTitle() error = %v", err)
	}
	if stored.RemainingAmount.Satang != 60000 {
		t.Errorf("stored RemainingAmount = %d, want 60000", stored.RemainingAmount.Satang)
	}

	// Second run finds nothing to correct.
	changed, err = svc.Recompute(ctx)
	if err != nil {
		t.Fatalf("Recompute() second run error = %v", err)
	}
	if changed != 0 {
		t.Errorf("Recompute() second run changed = %d, want 0", changed)
	}
}

func TestGoalService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), store.NewFeed(), nil)

	g, err := svc.Save(ctx, GoalInput{Title: "แฟชั่น", Amount: core.Money{Satang: 5000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	deleted, err := svc.Delete(ctx, g.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.Title != "แฟชั่น" {
		t.Errorf("Delete() Title = %q, want แฟชั่น", deleted.Title)
	}

	if _, err := svc.Delete(ctx, g.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() second call error = %v, want ErrNotFound", err)
	}
}

func TestGoalService_GoalEventPublished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := store.NewFeed()
	svc := NewGoalService(memory.New(), feed, nil)

	events := feed.Subscribe(ctx, store.TopicGoals)

	g, err := svc.Save(ctx, GoalInput{Title: "สิ่งของ", Amount: core.Money{Satang: 7000}})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Topic != store.TopicGoals || ev.Op != store.OpCreate || ev.ID != g.ID {
			t.Errorf("event = %+v, want create on goals for %s", ev, g.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received after Save()")
	}
}
