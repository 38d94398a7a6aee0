package web

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"tspgateway/cmd/tspctl/options"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":200,"data":{"is_online":true}}`)
	}))
	t.Cleanup(gateway.Close)

	o := options.NewDefaultOptions()
	o.GatewayURL = gateway.URL
	o.Token = "token"
	c, err := o.Config(context.Background())
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	return NewServer(gin.New(), o, c)
}

func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestInstallHandlers(t *testing.T) {
	s := newTestServer(t)

	w := get(s, "/api/v1/devices/860000000000001/online")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"imei":"860000000000001","online":true}`, w.Body.String())

	w = get(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = get(s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tsp_gateway_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	w := get(newTestServer(t), "/api/v2/devices")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "10004")
}

func TestHistoryWithoutStore(t *testing.T) {
	w := get(newTestServer(t), "/api/v1/devices/1/tracks?start=1700000000&end=1700003600")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
