package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"oomsin/internal/amqp"
	"oomsin/internal/core"
	"oomsin/internal/store"
)

// TransactionService orchestrates transaction writes across the store, the
// in-process change feed and AMQP.
type TransactionService struct {
	store      store.Store
	feed       *store.Feed
	amqpClient *amqp.Client
}

func NewTransactionService(st store.Store, feed *store.Feed, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      st,
		feed:       feed,
		amqpClient: amqpClient,
	}
}

// RecordInput is the client-supplied part of a new transaction.
type RecordInput struct {
	Kind     core.Kind
	Title    string
	Category string
	Amount   core.Money
	Note     string
}

// Record validates the input, assigns a fresh ID and timestamp, appends the
// transaction and notifies watchers. Two identical submissions produce two
// distinct records.
func (s *TransactionService) Record(ctx context.Context, in RecordInput) (core.Transaction, error) {
	t := core.Transaction{
		ID:        uuid.NewString(),
		Kind:      in.Kind,
		Title:     strings.TrimSpace(in.Title),
		Category:  strings.TrimSpace(in.Category),
		Amount:    in.Amount,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: time.Now().UTC(),
	}
	if t.Category == "" {
		t.Category = t.Title
	}
	if t.Note == "" {
		t.Note = core.DefaultNote
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.AppendTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	s.notify(ctx, topicFor(t.Kind), store.OpCreate, t.ID)
	return t, nil
}

// ListMonth returns the kind's transactions for the given month.
func (s *TransactionService) ListMonth(ctx context.Context, kind core.Kind, year, month int) ([]core.Transaction, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}
	if year < 1 || month < 1 || month > 12 {
		return nil, core.ErrInvalidDate
	}

	txns, err := s.store.ListMonth(ctx, kind, year, month)
	if err != nil {
		return nil, fmt.Errorf("list month: %w", err)
	}
	return txns, nil
}

// Delete removes the transaction and returns the deleted record, so callers
// can surface what was undone. Deleting a missing record returns
// store.ErrNotFound.
func (s *TransactionService) Delete(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	if !kind.Valid() {
		return core.Transaction{}, core.ErrInvalidKind
	}

	t, err := s.store.DeleteTransaction(ctx, kind, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}

	s.notify(ctx, topicFor(kind), store.OpDelete, t.ID)
	return t, nil
}

// Categories returns the seeded category set for the kind.
func (s *TransactionService) Categories(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}

	cats, err := s.store.ListCategories(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// notify pushes the change to local subscribers and, when AMQP is wired,
// to the mirror queue. Publish failures are logged and never fail the write.
func (s *TransactionService) notify(ctx context.Context, topic store.Topic, op store.Op, id string) {
	if s.feed != nil {
		s.feed.Publish(store.Event{Topic: topic, Op: op, ID: id})
	}

	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishChange(ctx, string(topic), string(op), id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"topic", topic, "op", op, "id", id, "error", err)
	}
}

func topicFor(kind core.Kind) store.Topic {
	if kind == core.Income {
		return store.TopicIncome
	}
	return store.TopicExpense
}
