package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"

	// DefaultNote is stored when the user leaves the note field empty.
	DefaultNote = "N/A"
)

type (
	Kind string

	Money struct {
		Satang int64
	}

	// Category is a seeded, client-immutable label with an icon reference.
	Category struct {
		ID       string
		Name     string
		ImageURL string
		Kind     Kind
	}

	// Transaction is a single recorded expense or income event. Transactions
	// are created once and only ever deleted, never updated.
	Transaction struct {
		ID        string
		Kind      Kind
		Title     string // usually equal to the category name
		Category  string
		Amount    Money
		Note      string
		CreatedAt time.Time
	}

	// Goal is a savings target tied to a category title. RemainingAmount is
	// derived from transactions recorded after the goal was created.
	Goal struct {
		ID              string
		Title           string
		Amount          Money
		RemainingAmount Money
		EndDate         time.Time
		Icon            string
		CreatedAt       time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
)

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (m Money) Validate() error {
	if m.Satang <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if err := g.Amount.Validate(); err != nil {
		return err
	}
	if g.CreatedAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthWindow returns the half-open UTC interval [first of month, first of
// next month) used for all month-scoped queries. Timestamps are compared
// chronologically, never as formatted strings.
func MonthWindow(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
