package wehttp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-contracts-go/connectors/wehttp"
	"github.com/weegigs/wee-contracts-go/counter"
	"github.com/weegigs/wee-contracts-go/stores/memory"
	"github.com/weegigs/wee-contracts-go/we"
)

type test = func(t *testing.T)

func newServer() *httptest.Server {
	logger := zerolog.Nop()
	host := counter.NewCounterHost(memory.NewStateStore(), &logger)
	return httptest.NewServer(wehttp.NewHandler(host, wehttp.Logger(&logger)))
}

func post(t *testing.T, server *httptest.Server, path string, contentType string, body string) (int, string) {
	response, err := http.Post(server.URL+path, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return response.StatusCode, string(data)
}

func get(t *testing.T, server *httptest.Server, path string) (int, string) {
	response, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	return response.StatusCode, string(data)
}

func instantiatesAndQueries(server *httptest.Server) test {
	return func(t *testing.T) {
		status, body := post(t, server, "/contracts/http-1/instantiate", "application/json", `{"set":{"value":7}}`)
		require.Equal(t, http.StatusOK, status, body)

		var result we.Result
		require.NoError(t, json.Unmarshal([]byte(body), &result))
		assert.NotEqual(t, we.InitialRevision, result.Revision)

		status, body = post(t, server, "/contracts/http-1/execute", "application/json; charset=utf-8", `{"inc":{}}`)
		require.Equal(t, http.StatusOK, status, body)

		status, body = post(t, server, "/contracts/http-1/query", "application/json", `{"value":{}}`)
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"value":8}`, body)

		status, body = get(t, server, "/contracts/http-1/query?msg="+url.QueryEscape(`{"value":{}}`))
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"value":8}`, body)
	}
}

func mapsErrors(server *httptest.Server) test {
	return func(t *testing.T) {
		status, body := post(t, server, "/contracts/http-2/query", "application/json", `{"value":{}}`)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, body, `"error"`)

		status, _ = post(t, server, "/contracts/http-2/execute", "application/json", `{"inc":{}}`)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = post(t, server, "/contracts/http-2/instantiate", "application/json", `{"set":{"value":300}}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = post(t, server, "/contracts/http-2/instantiate", "text/plain", `{"zero":{}}`)
		assert.Equal(t, http.StatusUnsupportedMediaType, status)

		status, _ = post(t, server, "/contracts/http-2/instantiate", "application/json", `{"set":{}}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, body = post(t, server, "/contracts/http-2/instantiate", "application/json", strings.Repeat(" ", 1<<20)+`{"zero":{}}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
		assert.Contains(t, body, "too large")

		status, _ = get(t, server, "/contracts/http-2/query")
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = post(t, server, "/contracts/not%20valid/instantiate", "application/json", `{"zero":{}}`)
		assert.Equal(t, http.StatusBadRequest, status)
	}
}

func TestHandler(t *testing.T) {
	server := newServer()
	defer server.Close()

	t.Run("instantiates and queries", instantiatesAndQueries(server))
	t.Run("maps errors", mapsErrors(server))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, wehttp.StatusCode(nil))
	assert.Equal(t, http.StatusNotFound, wehttp.StatusCode(errors.Wrap(we.StateMissing("value"), "load")))
	assert.Equal(t, http.StatusBadRequest, wehttp.StatusCode(we.Deserialization("msg", errors.New("bad"))))
	assert.Equal(t, http.StatusConflict, wehttp.StatusCode(we.RevisionConflict))
	assert.Equal(t, http.StatusInternalServerError, wehttp.StatusCode(we.StorageFailure("commit", "a", errors.New("down"))))
	assert.Equal(t, http.StatusNotFound, wehttp.StatusCode(we.EntryNotFound("counter", "migrate")))
	assert.Equal(t, http.StatusInternalServerError, wehttp.StatusCode(errors.New("unexpected")))
}
