// Package server exposes result submission and personal-best queries over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/pb"
	"github.com/verte-zerg/typebest/internal/resultfile"
	"github.com/verte-zerg/typebest/internal/tracker"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	requestTimeout      = 30 * time.Second
)

// Tracker is the service the handlers call into.
type Tracker interface {
	Submit(ctx context.Context, userID string, result model.Result) (tracker.Outcome, error)
	PersonalBests(ctx context.Context, userID string) (model.PersonalBests, error)
	LeaderboardBests(ctx context.Context, userID string) (model.LbPersonalBests, error)
	History(ctx context.Context, userID string, limit int) ([]model.ResultRecord, error)
	Funboxes() []funbox.Funbox
}

type handlers struct {
	tracker Tracker
	logger  *zap.Logger
}

// NewRouter builds the chi router with shared middleware.
func NewRouter(t Tracker, logger *zap.Logger) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{tracker: t, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		WriteError(req.Context(), w, NewError("route_not_found", fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		WriteError(req.Context(), w, NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", h.healthz)
	r.Get("/funboxes", h.funboxes)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/results", h.submit)
		r.Get("/results", h.history)
		r.Get("/personal-bests", h.personalBests)
		r.Get("/leaderboard-bests", h.leaderboardBests)
	})
	return r
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) funboxes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Funboxes())
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := bodyFormat(r.Header.Get("Content-Type"))
	if err != nil {
		WriteError(ctx, w, NewError("unsupported_media_type", err.Error(), http.StatusUnsupportedMediaType))
		return
	}
	results, err := resultfile.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		WriteError(ctx, w, NewError("invalid_body", err.Error(), http.StatusBadRequest))
		return
	}
	if len(results) != 1 {
		WriteError(ctx, w, NewError("invalid_body", "expected a single result", http.StatusBadRequest))
		return
	}

	out, err := h.tracker.Submit(ctx, chi.URLParam(r, "userID"), results[0])
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			WriteError(ctx, w, NewError("invalid_limit", fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit), http.StatusBadRequest))
			return
		}
		limit = n
	}
	records, err := h.tracker.History(ctx, chi.URLParam(r, "userID"), limit)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultViews(records))
}

func (h *handlers) personalBests(w http.ResponseWriter, r *http.Request) {
	pbs, err := h.tracker.PersonalBests(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeServiceError(r.Context(), w, err)
		return
	}
	if pbs == nil {
		pbs = model.PersonalBests{}
	}
	writeJSON(w, http.StatusOK, pbs)
}

func (h *handlers) leaderboardBests(w http.ResponseWriter, r *http.Request) {
	lb, err := h.tracker.LeaderboardBests(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *handlers) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var missing *pb.MissingDataError
	switch {
	case errors.Is(err, tracker.ErrEmptyUser):
		WriteError(ctx, w, NewError("invalid_user", err.Error(), http.StatusBadRequest))
	case errors.As(err, &missing):
		WriteError(ctx, w, NewError("missing_result_data", err.Error(), http.StatusBadRequest).
			WithDetails(map[string]any{"field": missing.Field, "stage": missing.Stage}))
	case errors.Is(err, pb.ErrMissingResultData):
		WriteError(ctx, w, NewError("missing_result_data", err.Error(), http.StatusBadRequest))
	default:
		h.logger.Error("request failed", zap.String("request_id", middleware.GetReqID(ctx)), zap.Error(err))
		WriteError(ctx, w, NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}

func bodyFormat(contentType string) (resultfile.Format, error) {
	if contentType == "" {
		return resultfile.FormatJSON, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("invalid content type: %w", err)
	}
	switch mediaType {
	case "application/json":
		return resultfile.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return resultfile.FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}

type resultView struct {
	ID          string       `json:"id"`
	Result      model.Result `json:"result"`
	IsPb        bool         `json:"isPb"`
	SubmittedAt int64        `json:"submittedAt"`
}

func toResultViews(records []model.ResultRecord) []resultView {
	out := make([]resultView, 0, len(records))
	for _, rec := range records {
		out = append(out, resultView{
			ID:          rec.ID,
			Result:      rec.Result,
			IsPb:        rec.IsPb,
			SubmittedAt: rec.SubmittedAt.UnixMilli(),
		})
	}
	return out
}
