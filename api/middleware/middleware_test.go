package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gearmarket-backend/api/responses"
	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

func TestRequestIDKeepsWellFormedInbound(t *testing.T) {
	var seen string
	h := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(responses.RequestIDHeader)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(responses.RequestIDHeader, "lb-trace_01.a")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	require.Equal(t, "lb-trace_01.a", seen)
	require.Equal(t, "lb-trace_01.a", resp.Header().Get(responses.RequestIDHeader))
}

func TestRequestIDReplacesMalformedInbound(t *testing.T) {
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, inbound := range []string{"", "has space", "<script>", strings.Repeat("a", maxRequestIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(responses.RequestIDHeader, inbound)
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)

		got := resp.Header().Get(responses.RequestIDHeader)
		require.NotEqual(t, inbound, got)
		require.Len(t, got, 36)
	}
}

func TestRecovererWritesInternalEnvelope(t *testing.T) {
	h := RequestID(nil)(Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("template map missing")
	})))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	var body responses.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, string(pkgerrors.CodeInternal), body.Error.Code)
	require.NotEmpty(t, body.Error.RequestID)
	require.NotContains(t, body.Error.Message, "template map missing")
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggingRecordsDefaultStatus(t *testing.T) {
	h := Logging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ok", resp.Body.String())
}

func TestCORSOrigins(t *testing.T) {
	h := CORS(nil, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/notifications", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		return resp
	}

	require.Equal(t, "https://gearmarket.kr", preflight("https://gearmarket.kr").Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, preflight("http://localhost:3000").Header().Get("Access-Control-Allow-Origin"))

	dev := CORS([]string{" https://staging.gearmarket.kr/ "}, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	dev.ServeHTTP(resp, req)
	require.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
}
