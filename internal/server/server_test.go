package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/store"
	"github.com/verte-zerg/typebest/internal/tracker"
)

const resultJSON = `{"mode":"time","mode2":"15","wpm":104.2,"rawWpm":107,"acc":98.1,"consistency":77,
"difficulty":"normal","language":"english","punctuation":false,"numbers":false,"lazyMode":false}`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.Open(context.Background(), store.Options{Path: filepath.Join(t.TempDir(), "typebest.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	svc := tracker.New(st, tracker.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	}))
	return NewRouter(svc, nil)
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestSubmitAndQuery(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/users/u1/results", "application/json", resultJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out tracker.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.True(t, out.IsPb)
	require.True(t, out.FunboxEligible)
	require.NotEmpty(t, out.ResultID)

	rec = do(t, h, http.MethodGet, "/users/u1/personal-bests", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pbs model.PersonalBests
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pbs))
	require.Len(t, pbs["time"]["15"], 1)
	require.Equal(t, 104.2, pbs["time"]["15"][0].Wpm)

	rec = do(t, h, http.MethodGet, "/users/u1/leaderboard-bests", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lb model.LbPersonalBests
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lb))
	require.Equal(t, 104.2, lb["time"]["15"]["english"].Wpm)

	rec = do(t, h, http.MethodGet, "/users/u1/results?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []resultView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	require.True(t, history[0].IsPb)
	require.Equal(t, out.ResultID, history[0].ID)
}

func TestSubmitYAML(t *testing.T) {
	h := newTestRouter(t)
	body := "mode: words\nmode2: \"25\"\nwpm: 70\nrawWpm: 72\nacc: 95\nconsistency: 60\ndifficulty: normal\nlanguage: english\npunctuation: false\nnumbers: false\nlazyMode: false\n"
	rec := do(t, h, http.MethodPost, "/users/u1/results", "application/yaml; charset=utf-8", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["isPb"])
}

func TestSubmitMissingDataReturnsEnvelope(t *testing.T) {
	h := newTestRouter(t)
	body := strings.Replace(resultJSON, `"language":"english",`, "", 1)
	rec := do(t, h, http.MethodPost, "/users/u1/results", "application/json", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeBody(t, rec)
	require.Equal(t, "missing_result_data", payload["error"])
	require.Equal(t, "language", payload["field"])
	require.Equal(t, float64(http.StatusBadRequest), payload["status"])
	require.NotEmpty(t, payload["request_id"])
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/users/u1/results", "text/plain", resultJSON)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/u1/results", "application/json", "["+resultJSON+","+resultJSON+"]")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_body", decodeBody(t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/users/u1/results", "application/json", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/users/%20/results", "application/json", resultJSON)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_user", decodeBody(t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/users/u1/results?limit=0", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_limit", decodeBody(t, rec)["error"])
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "route_not_found", decodeBody(t, rec)["error"])
}

func TestFunboxesEndpoint(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/funboxes", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []funbox.Funbox
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list)
}

type panickingTracker struct {
	*tracker.Service
}

func (panickingTracker) Funboxes() []funbox.Funbox {
	panic("boom")
}

func TestRecovererWritesEnvelope(t *testing.T) {
	h := NewRouter(panickingTracker{}, nil)
	rec := do(t, h, http.MethodGet, "/funboxes", "", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal_server_error", decodeBody(t, rec)["error"])
}
