/*
handlers.go - HTTP handlers for the live scoring engine

PURPOSE:
  Exposes the scoring engine via REST. Handles HTTP request/response and
  JSON serialization, delegates every domain decision to the engine.

ENDPOINTS:
  Matches:
    POST /api/matches                    Start a match
    GET  /api/matches/{id}               Match summary
    POST /api/matches/{id}/innings       Start the next innings

  Innings:
    GET    /api/innings/{id}             Live summary
    POST   /api/innings/{id}/batsmen     Set openers / replacement batter
    POST   /api/innings/{id}/bowler      Set bowler
    POST   /api/innings/{id}/balls       Record a ball
    DELETE /api/innings/{id}/balls/last  Undo the last ball
    POST   /api/innings/{id}/swap        Swap striker and non-striker

  Operational:
    GET /api/formats                     Available match formats
    GET /api/sync/failures               Backend writes needing attention

ERROR HANDLING:
  Rejections name the specific unmet precondition so the scorer can
  correct input quickly mid-match. Status mapping:
  - 400: malformed input, failed preconditions
  - 404: unknown match/innings
  - 409: quota exceeded, over change required, innings closed
  - 500: internal errors, replay divergence
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pavilion/scoring-engine/engine"
	"github.com/pavilion/scoring-engine/format"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *engine.Engine
	Recorder *engine.Recorder
	Formats  []engine.MatchFormat
}

// NewHandler creates a handler. Formats defaults to the built-in presets.
func NewHandler(eng *engine.Engine, rec *engine.Recorder, formats []engine.MatchFormat) *Handler {
	if len(formats) == 0 {
		formats = format.Defaults()
	}
	return &Handler{Engine: eng, Recorder: rec, Formats: formats}
}

// =============================================================================
// MATCH HANDLERS
// =============================================================================

// ListFormats returns the available match formats.
func (h *Handler) ListFormats(w http.ResponseWriter, r *http.Request) {
	dtos := make([]FormatDTO, len(h.Formats))
	for i, f := range h.Formats {
		dtos[i] = toFormatDTO(f)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// StartMatch creates a match from a preset name or an inline format.
func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	var req StartMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	var f engine.MatchFormat
	switch {
	case req.CustomFormat != nil:
		f = req.CustomFormat.toFormat()
	case req.Format != "":
		preset, ok := format.ByName(h.Formats, req.Format)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown format "+req.Format, "unknown_format")
			return
		}
		f = preset
	default:
		writeError(w, http.StatusBadRequest, "format or custom_format is required", "bad_request")
		return
	}

	m, err := h.Engine.StartMatch(r.Context(), f, req.Home.toTeam(), req.Away.toTeam())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatchDTO(m))
}

// GetMatch returns the match with its innings summaries.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.Engine.Match(r.Context(), engine.MatchID(chi.URLParam(r, "id")))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(m))
}

// StartInnings opens the next innings of a match.
func (h *Handler) StartInnings(w http.ResponseWriter, r *http.Request) {
	var req StartInningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	in, err := h.Engine.StartInnings(r.Context(),
		engine.MatchID(chi.URLParam(r, "id")),
		engine.TeamID(req.BattingTeam),
		engine.TeamID(req.BowlingTeam))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSummaryDTO(in.Summary()))
}

// =============================================================================
// INNINGS HANDLERS
// =============================================================================

func inningsID(r *http.Request) engine.InningsID {
	return engine.InningsID(chi.URLParam(r, "id"))
}

// GetInnings returns the live summary.
func (h *Handler) GetInnings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.InningsSummary(r.Context(), inningsID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// SetBatsmen names the openers, or the replacement batter after a wicket.
func (h *Handler) SetBatsmen(w http.ResponseWriter, r *http.Request) {
	var req SetBatsmenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	var err error
	switch {
	case req.Batsman != "":
		err = h.Engine.SetBatsman(r.Context(), inningsID(r), engine.PlayerID(req.Batsman))
	case req.Striker != "" && req.NonStriker != "":
		err = h.Engine.SetBatsmen(r.Context(), inningsID(r),
			engine.PlayerID(req.Striker), engine.PlayerID(req.NonStriker))
	default:
		writeError(w, http.StatusBadRequest, "supply striker and non_striker, or batsman", "bad_request")
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeSummary(w, r)
}

// SetBowler names the bowler for the next delivery.
func (h *Handler) SetBowler(w http.ResponseWriter, r *http.Request) {
	var req SetBowlerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	if req.Bowler == "" {
		writeError(w, http.StatusBadRequest, "bowler is required", "bad_request")
		return
	}
	if err := h.Engine.SetBowler(r.Context(), inningsID(r), engine.PlayerID(req.Bowler)); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeSummary(w, r)
}

// RecordBall records one delivery.
func (h *Handler) RecordBall(w http.ResponseWriter, r *http.Request) {
	var req RecordBallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	out, err := h.Engine.RecordBall(r.Context(), inningsID(r), req.toProposal())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOutcomeDTO(out))
}

// UndoLastBall reverts the most recent delivery.
func (h *Handler) UndoLastBall(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.UndoLastBall(r.Context(), inningsID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// SwapBatsmen corrects a running mix-up.
func (h *Handler) SwapBatsmen(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.SwapBatsmen(r.Context(), inningsID(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	h.writeSummary(w, r)
}

func (h *Handler) writeSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.InningsSummary(r.Context(), inningsID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// =============================================================================
// OPERATIONAL HANDLERS
// =============================================================================

// ListSyncFailures surfaces backend writes that exhausted their retries.
func (h *Handler) ListSyncFailures(w http.ResponseWriter, r *http.Request) {
	dtos := []SyncFailureDTO{}
	if h.Recorder != nil {
		for _, f := range h.Recorder.Failures() {
			dtos = append(dtos, SyncFailureDTO{
				InningsID: string(f.InningsID),
				Seq:       f.Seq,
				Desc:      f.Desc,
				Error:     f.Err.Error(),
				At:        f.At.Format(time.RFC3339),
			})
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses,
// preserving the precondition message for the scorer.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsPrecondition(err):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error(), errorCode(err))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, engine.ErrSameBowlerConsecutiveOvers):
		return "same_bowler_consecutive_overs"
	case errors.Is(err, engine.ErrOverChangeRequired):
		return "over_change_required"
	case errors.Is(err, engine.ErrBatsmanRequired):
		return "batsman_required"
	case errors.Is(err, engine.ErrBatsmenNotSet):
		return "batsmen_not_set"
	case errors.Is(err, engine.ErrBowlerNotSet):
		return "bowler_not_set"
	case errors.Is(err, engine.ErrInningsClosed):
		return "innings_closed"
	case errors.Is(err, engine.ErrNothingToUndo):
		return "nothing_to_undo"
	case errors.Is(err, engine.ErrInvalidRoster):
		return "invalid_roster"
	case errors.Is(err, engine.ErrNotAtCrease):
		return "not_at_crease"
	case errors.Is(err, engine.ErrInvalidBall):
		return "invalid_ball"
	case errors.Is(err, engine.ErrReplayDivergence):
		return "replay_divergence"
	case engine.IsNotFound(err):
		return "not_found"
	default:
		return "internal"
	}
}
