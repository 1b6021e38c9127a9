package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"oomsin/internal/core"
	"oomsin/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondDomainError maps service errors onto HTTP statuses: missing records
// are 404, rejected input is 422, everything else is a 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidKind,
		core.ErrEmptyTitle,
		core.ErrTitleTooLong,
		core.ErrEmptyCategory,
		core.ErrInvalidDate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// queryKind reads the kind parameter, defaulting to expense.
func queryKind(r *http.Request) core.Kind {
	v := strings.TrimSpace(r.URL.Query().Get("kind"))
	if v == "" {
		return core.Expense
	}
	return core.Kind(v)
}

// queryMonth reads year and month parameters, defaulting to the current UTC
// month. A parameter that is present but not a number is a validation error,
// not a silent fallback.
func queryMonth(r *http.Request) (int, int, error) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: year %q is not a number", core.ErrInvalidDate, v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: month %q is not a number", core.ErrInvalidDate, v)
		}
		month = m
	}
	return year, month, nil
}

// Wire representations. Amounts travel as integer satang; input additionally
// accepts a decimal baht string.

type categoryJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Kind     string `json:"kind"`
}

type transactionJSON struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	AmountSatang int64     `json:"amount_satang"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
}

type goalJSON struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	AmountSatang    int64      `json:"amount_satang"`
	RemainingSatang int64      `json:"remaining_amount_satang"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Icon            string     `json:"icon,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type summarySliceJSON struct {
	Title        string  `json:"title"`
	AmountSatang int64   `json:"amount_satang"`
	Percentage   float64 `json:"percentage"`
	Color        string  `json:"color"`
}

type summaryJSON struct {
	Year        int                `json:"year"`
	Month       int                `json:"month"`
	Kind        string             `json:"kind"`
	TotalSatang int64              `json:"total_satang"`
	Slices      []summarySliceJSON `json:"slices"`
	Items       []transactionJSON  `json:"items"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL, Kind: string(c.Kind)}
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:           t.ID,
		Kind:         string(t.Kind),
		Title:        t.Title,
		Category:     t.Category,
		AmountSatang: t.Amount.Satang,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt,
	}
}

func toTransactionListJSON(txns []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func toGoalJSON(g core.Goal) goalJSON {
	out := goalJSON{
		ID:              g.ID,
		Title:           g.Title,
		AmountSatang:    g.Amount.Satang,
		RemainingSatang: g.RemainingAmount.Satang,
		Icon:            g.Icon,
		CreatedAt:       g.CreatedAt,
	}
	if !g.EndDate.IsZero() {
		end := g.EndDate
		out.EndDate = &end
	}
	return out
}

func toSummaryJSON(sum core.MonthSummary) summaryJSON {
	out := summaryJSON{
		Year:        sum.Year,
		Month:       sum.Month,
		Kind:        string(sum.Kind),
		TotalSatang: sum.Total.Satang,
		Slices:      make([]summarySliceJSON, 0, len(sum.Slices)),
		Items:       toTransactionListJSON(sum.Items),
	}
	for _, sl := range sum.Slices {
		out.Slices = append(out.Slices, summarySliceJSON{
			Title:        sl.Title,
			AmountSatang: sl.Amount.Satang,
			Percentage:   sl.Percentage,
			Color:        sl.Color,
		})
	}
	return out
}

// parseAmount accepts either integer satang or a decimal baht string.
func parseAmount(satang int64, decimal string) (core.Money, error) {
	if satang > 0 {
		return core.Money{Satang: satang}, nil
	}
	decimal = strings.TrimSpace(decimal)
	if decimal == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	n, err := core.ParseDecimalToSatang(decimal)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Satang: n}, nil
}
