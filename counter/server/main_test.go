package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-contracts-go/connectors/wehttp"
	"github.com/weegigs/wee-contracts-go/support"
)

func TestMemoryServer(t *testing.T) {
	cfg := support.DefaultConfig()

	contract, cleanup, err := host(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	server := httptest.NewServer(withLogging(wehttp.NewHandler(contract)))
	defer server.Close()

	response, err := http.Post(server.URL+"/contracts/server-1/instantiate", "application/json", strings.NewReader(`{"zero":{}}`))
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)

	response, err = http.Post(server.URL+"/contracts/server-1/execute", "application/json", strings.NewReader(`{"dec":{}}`))
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func TestExporter(t *testing.T) {
	ctx := context.Background()
	cfg := support.DefaultConfig()

	spans, err := exporter(ctx, cfg)
	assert.Nil(t, err)
	assert.Nil(t, spans)

	cfg.TelemetryExporter = "console"
	spans, err = exporter(ctx, cfg)
	assert.Nil(t, err)
	assert.NotNil(t, spans)

	cfg.TelemetryExporter = "honeycomb"
	_, err = exporter(ctx, cfg)
	assert.Error(t, err)

	cfg.TelemetryExporter = "zipkin"
	_, err = exporter(ctx, cfg)
	assert.Error(t, err)
}

func TestStatusRecorder(t *testing.T) {
	recorder := httptest.NewRecorder()
	handler := withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, recorder.Code)
}
