package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"oomsin/internal/core"
	"oomsin/internal/kv"
	"oomsin/internal/services"
	"oomsin/internal/store"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.txns.Categories(r.Context(), queryKind(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	respondJSON(w, http.StatusOK, out)
}

type recordRequest struct {
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	AmountSatang int64  `json:"amount_satang"`
	Amount       string `json:"amount"`
	Note         string `json:"note"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(req.AmountSatang, req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.txns.Record(r.Context(), services.RecordInput{
		Kind:     core.Kind(strings.TrimSpace(req.Kind)),
		Title:    sanitizeInput(req.Title),
		Category: sanitizeInput(req.Category),
		Amount:   amount,
		Note:     sanitizeInput(req.Note),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateMonth(tx.Kind, tx.CreatedAt)
	respondJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	kind := queryKind(r)
	year, month, err := queryMonth(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	key := cacheKey(kind, year, month)
	if items, found := s.monthCache.Get(key); found {
		respondJSON(w, http.StatusOK, toTransactionListJSON(items))
		return
	}

	txns, err := s.txns.ListMonth(r.Context(), kind, year, month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.monthCache.Set(key, txns)
	respondJSON(w, http.StatusOK, toTransactionListJSON(txns))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	kind := queryKind(r)

	tx, err := s.txns.Delete(r.Context(), kind, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.invalidateMonth(kind, tx.CreatedAt)
	respondJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	kind := queryKind(r)
	year, month, err := queryMonth(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	key := cacheKey(kind, year, month)
	if sum, found := s.summaryCache.Get(key); found {
		respondJSON(w, http.StatusOK, toSummaryJSON(sum))
		return
	}

	sum, err := s.summaries.MonthSummary(r.Context(), kind, year, month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s.summaryCache.Set(key, sum)
	respondJSON(w, http.StatusOK, toSummaryJSON(sum))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	respondJSON(w, http.StatusOK, out)
}

type saveGoalRequest struct {
	Title        string `json:"title"`
	AmountSatang int64  `json:"amount_satang"`
	Amount       string `json:"amount"`
	EndDate      string `json:"end_date"`
	Icon         string `json:"icon"`
}

func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var req saveGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := parseAmount(req.AmountSatang, req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var endDate time.Time
	if v := strings.TrimSpace(req.EndDate); v != "" {
		endDate, err = time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid end_date, want RFC 3339")
			return
		}
	}

	g, err := s.goals.Save(r.Context(), services.GoalInput{
		Title:   sanitizeInput(req.Title),
		Amount:  amount,
		EndDate: endDate,
		Icon:    sanitizeInput(req.Icon),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, toGoalJSON(g))
}

type topUpRequest struct {
	Title        string `json:"title"`
	AmountSatang int64  `json:"amount_satang"`
	Amount       string `json:"amount"`
}

func (s *Server) handleTopUpGoal(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	extra, err := parseAmount(req.AmountSatang, req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g, err := s.goals.TopUp(r.Context(), sanitizeInput(req.Title), extra)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toGoalJSON(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.goals.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toGoalJSON(g))
}

// handleWatch streams change events to the client as server-sent events. The
// subscription lives as long as the request: when the client disconnects the
// request context ends and the feed drops the subscriber.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var topics []store.Topic
	if v := strings.TrimSpace(r.URL.Query().Get("topics")); v != "" {
		for _, name := range strings.Split(v, ",") {
			switch topic := store.Topic(strings.TrimSpace(name)); topic {
			case store.TopicExpense, store.TopicIncome, store.TopicGoals:
				topics = append(topics, topic)
			default:
				respondError(w, http.StatusUnprocessableEntity, "unknown topic "+name)
				return
			}
		}
	}

	events := s.feed.Subscribe(r.Context(), topics...)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		payload, err := json.Marshal(map[string]any{
			"topic": ev.Topic,
			"op":    ev.Op,
			"id":    ev.ID,
			"at":    ev.At,
		})
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return
		}
		flusher.Flush()
	}
}

// handleSnapshot serves the raw locally cached snapshot the worker maintains,
// for clients that want the last known state without hitting the store.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		respondError(w, http.StatusNotFound, "snapshots not configured")
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	switch key {
	case kv.KeyExpense, kv.KeyIncome, kv.KeyGoals:
	default:
		respondError(w, http.StatusUnprocessableEntity, "unknown snapshot key")
		return
	}

	data, ok, err := s.snapshots.Raw(key)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read snapshot", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "snapshot not written yet")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
