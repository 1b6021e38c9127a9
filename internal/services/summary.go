package services

import (
	"context"
	"fmt"

	"oomsin/internal/core"
	"oomsin/internal/store"
)

// SummaryService produces the chart-ready month aggregation.
type SummaryService struct {
	store store.TransactionStore
}

func NewSummaryService(st store.TransactionStore) *SummaryService {
	return &SummaryService{store: st}
}

// MonthSummary fetches the month's transactions for the kind and groups them
// by category title. A month with no transactions yields an empty summary, not
// an error.
func (s *SummaryService) MonthSummary(ctx context.Context, kind core.Kind, year, month int) (core.MonthSummary, error) {
	if !kind.Valid() {
		return core.MonthSummary{}, core.ErrInvalidKind
	}
	if year < 1 || month < 1 || month > 12 {
		return core.MonthSummary{}, core.ErrInvalidDate
	}

	txns, err := s.store.ListMonth(ctx, kind, year, month)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list month: %w", err)
	}
	return core.Summarize(year, month, kind, txns), nil
}
