package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/usecase"
	"github.com/upsight-lab/copilot/pkg/utils/errutil"
)

const timeFormat = time.RFC3339

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// errorStatus maps a use case error to an HTTP status. Unrecognized
// errors are treated as internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotInsight):
		return http.StatusForbidden
	case errors.Is(err, interfaces.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrTurnTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type chatRequest struct {
	Message string `json:"message"`
	Tone    string `json:"tone,omitempty"`
}

type chatResponse struct {
	DisplayText string           `json:"display_text"`
	Action      *model.Action    `json:"action,omitempty"`
	Citations   []model.Citation `json:"citations,omitempty"`
	Provider    string           `json:"provider"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "malformed chat request body"), http.StatusBadRequest)
		return
	}

	reply, err := s.uc.Chat(ctx, &usecase.ChatInput{
		OwnerID: ownerFrom(ctx),
		Message: req.Message,
		Tone:    req.Tone,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		DisplayText: reply.DisplayText,
		Action:      reply.Action,
		Citations:   reply.Citations,
		Provider:    reply.Provider,
	})
}

func (s *Server) dashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	force := r.URL.Query().Get("refresh") == "1"

	summary, err := s.uc.GetDashboardSummary(ctx, ownerFrom(ctx), force)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "days must be an integer"), http.StatusBadRequest)
			return
		}
		days = parsed
	}

	timeline, err := s.uc.Timeline(ctx, ownerFrom(ctx), days)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	respondJSON(w, http.StatusOK, timeline)
}

type agentContextRequest struct {
	Content string `json:"content"`
}

type agentContextResponse struct {
	ID        model.MemoryRecordID `json:"id"`
	CreatedAt string               `json:"created_at"`
}

func (s *Server) agentContextHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req agentContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "malformed agent context body"), http.StatusBadRequest)
		return
	}

	rec, err := s.uc.SaveAgentContext(ctx, ownerFrom(ctx), req.Content)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	respondJSON(w, http.StatusCreated, agentContextResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt.Format(timeFormat),
	})
}

type sweepResponse struct {
	Created []string `json:"created"`
}

func (s *Server) sweepInsightsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.uc.SweepInsights(ctx, ownerFrom(ctx))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	resp := sweepResponse{Created: make([]string, len(records))}
	for i, rec := range records {
		resp.Created[i] = rec.Content
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteInsightHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID := model.MemoryRecordID(chi.URLParam(r, "recordID"))

	if err := s.uc.DeleteInsight(ctx, ownerFrom(ctx), recordID); err != nil {
		errutil.HandleHTTP(ctx, w, err, errorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
