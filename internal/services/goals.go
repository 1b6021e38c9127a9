package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"oomsin/internal/amqp"
	"oomsin/internal/core"
	"oomsin/internal/store"
)

// GoalService manages savings goals. A goal's remaining amount is always
// recomputed from the transactions recorded after it, never trusted from the
// stored row.
type GoalService struct {
	store      store.Store
	feed       *store.Feed
	amqpClient *amqp.Client
}

func NewGoalService(st store.Store, feed *store.Feed, amqpClient *amqp.Client) *GoalService {
	return &GoalService{
		store:      st,
		feed:       feed,
		amqpClient: amqpClient,
	}
}

// GoalInput is the client-supplied part of a goal.
type GoalInput struct {
	Title   string
	Amount  core.Money
	EndDate time.Time
	Icon    string
}

// Save creates the goal or, when one with the same title already exists,
// replaces its target in place. Saving the same title twice leaves exactly one
// goal.
func (s *GoalService) Save(ctx context.Context, in GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(in.Title),
		Amount:          in.Amount,
		RemainingAmount: in.Amount,
		EndDate:         in.EndDate,
		Icon:            in.Icon,
		CreatedAt:       time.Now().UTC(),
	}

	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	saved, err := s.store.PutGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("put goal: %w", err)
	}

	op := store.OpCreate
	if saved.ID != g.ID {
		op = store.OpUpdate
	}
	s.notify(ctx, op, saved.ID)
	return saved, nil
}

// TopUp raises an existing goal's target and remaining amount by extra. When
// no goal targets the title yet, one is created with extra as its target.
func (s *GoalService) TopUp(ctx context.Context, title string, extra core.Money) (core.Goal, error) {
	if err := extra.Validate(); err != nil {
		return core.Goal{}, err
	}
	title = strings.TrimSpace(title)

	g, err := s.store.GetGoalByTitle(ctx, title)
	if errors.Is(err, store.ErrNotFound) {
		return s.Save(ctx, GoalInput{Title: title, Amount: extra})
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}

	g = g.TopUp(extra)
	if err := s.store.UpdateGoalAmounts(ctx, g.ID, g.Amount, g.RemainingAmount); err != nil {
		return core.Goal{}, fmt.Errorf("update goal amounts: %w", err)
	}

	s.notify(ctx, store.OpUpdate, g.ID)
	return g, nil
}

// List returns every goal with its remaining amount recomputed from the
// transactions recorded after it. The recomputed values are not persisted
// here; Recompute handles that.
func (s *GoalService) List(ctx context.Context) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	for i, g := range goals {
		txns, err := s.store.ListAfter(ctx, g.Title, g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("list transactions for goal %q: %w", g.Title, err)
		}
		goals[i].RemainingAmount = core.Remaining(g, txns)
	}
	return goals, nil
}

// Get returns one goal by title with its remaining amount recomputed.
func (s *GoalService) Get(ctx context.Context, title string) (core.Goal, error) {
	g, err := s.store.GetGoalByTitle(ctx, strings.TrimSpace(title))
	if err != nil {
		return core.Goal{}, err
	}

	txns, err := s.store.ListAfter(ctx, g.Title, g.CreatedAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("list transactions for goal %q: %w", g.Title, err)
	}
	g.RemainingAmount = core.Remaining(g, txns)
	return g, nil
}

// Recompute walks every goal, recomputes its remaining amount and persists
// only the rows that drifted. Running it twice in a row changes nothing the
// second time. It returns how many goals were corrected.
func (s *GoalService) Recompute(ctx context.Context) (int, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("list goals: %w", err)
	}

	changed := 0
	for _, g := range goals {
		txns, err := s.store.ListAfter(ctx, g.Title, g.CreatedAt)
		if err != nil {
			return changed, fmt.Errorf("list transactions for goal %q: %w", g.Title, err)
		}

		want := core.Remaining(g, txns)
		if want == g.RemainingAmount {
			continue
		}

		if err := s.store.UpdateGoalAmounts(ctx, g.ID, g.Amount, want); err != nil {
			return changed, fmt.Errorf("update goal %q: %w", g.Title, err)
		}
		changed++

		slog.InfoContext(ctx, "Reconciled goal remaining amount",
			"title", g.Title,
			"stored_satang", g.RemainingAmount.Satang,
			"remaining_satang", want.Satang)
		s.notify(ctx, store.OpUpdate, g.ID)
	}
	return changed, nil
}

// Delete removes the goal and returns the deleted record. Deleting a missing
// goal returns store.ErrNotFound.
func (s *GoalService) Delete(ctx context.Context, id string) (core.Goal, error) {
	g, err := s.store.DeleteGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("delete goal: %w", err)
	}

	s.notify(ctx, store.OpDelete, g.ID)
	return g, nil
}

func (s *GoalService) notify(ctx context.Context, op store.Op, id string) {
	if s.feed != nil {
		s.feed.Publish(store.Event{Topic: store.TopicGoals, Op: op, ID: id})
	}

	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishChange(ctx, string(store.TopicGoals), string(op), id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"topic", store.TopicGoals, "op", op, "id", id, "error", err)
	}
}
