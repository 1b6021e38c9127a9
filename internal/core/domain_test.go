package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Satang: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Satang: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Satang: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	now := time.Now().UTC()
	good := Transaction{
		Kind:      Expense,
		Title:     "ค่าอาหาร",
		Category:  "ค่าอาหาร",
		Amount:    Money{Satang: 10000},
		Note:      DefaultNote,
		CreatedAt: now,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "transfer", Title: "a", Category: "c", Amount: Money{Satang: 1}, CreatedAt: now},
		{Kind: Expense, Title: "", Category: "c", Amount: Money{Satang: 1}, CreatedAt: now},
		{Kind: Expense, Title: "a", Category: "", Amount: Money{Satang: 1}, CreatedAt: now},
		{Kind: Income, Title: "a", Category: "c", Amount: Money{Satang: 0}, CreatedAt: now},
		{Kind: Income, Title: "a", Category: "c", Amount: Money{Satang: 1}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	now := time.Now().UTC()
	good := Goal{Title: "ค่าเดินทาง", Amount: Money{Satang: 100000}, CreatedAt: now}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Goal{
		{Title: "", Amount: Money{Satang: 1}, CreatedAt: now},
		{Title: "a", Amount: Money{Satang: 0}, CreatedAt: now},
		{Title: "a", Amount: Money{Satang: 1}},
	}
	for i, g := range bads {
		if err := g.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(2025, 12)
	if !from.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", from)
	}
	if !to.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to: %v", to)
	}
}
