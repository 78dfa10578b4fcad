package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-contracts-go/counter"
	"github.com/weegigs/wee-contracts-go/stores/memory"
)

func request(method string, path string, body string) events.APIGatewayV2HTTPRequest {
	event := events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
	}
	event.RequestContext.HTTP.Method = method

	return event
}

func TestHandler(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	handler := createHandler(counter.NewCounterHost(memory.NewStateStore(), &logger), &logger)

	t.Run("runs the counter", func(t *testing.T) {
		response, err := handler(ctx, request(http.MethodPost, "/contracts/lambda-1/instantiate", `{"set":{"value":254}}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode, response.Body)

		encoded := request(http.MethodPost, "/prod/contracts/lambda-1/execute", base64.StdEncoding.EncodeToString([]byte(`{"inc":{}}`)))
		encoded.IsBase64Encoded = true
		response, err = handler(ctx, encoded)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode, response.Body)

		response, err = handler(ctx, request(http.MethodPost, "/contracts/lambda-1/execute", `{"inc":{}}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode, response.Body)

		get := request(http.MethodGet, "/contracts/lambda-1/query", "")
		get.QueryStringParameters = map[string]string{"msg": `{"value":{}}`}
		response, err = handler(ctx, get)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, response.StatusCode)
		assert.JSONEq(t, `{"value":255}`, response.Body)
	})

	t.Run("maps failures", func(t *testing.T) {
		response, err := handler(ctx, request(http.MethodPost, "/contracts/lambda-2/query", `{"value":{}}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, response.StatusCode)
		assert.JSONEq(t, `{"error":"state missing: no value stored for \"value\""}`, response.Body)

		response, err = handler(ctx, request(http.MethodPost, "/contracts/lambda-2/instantiate", `{"zero":{},"set":{"value":1}}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, response.StatusCode)

		plain := request(http.MethodPost, "/contracts/lambda-2/instantiate", `{"zero":{}}`)
		plain.Headers["content-type"] = "text/plain"
		response, err = handler(ctx, plain)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, response.StatusCode)

		response, err = handler(ctx, request(http.MethodPost, "/contracts/lambda-2/migrate", `{}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, response.StatusCode)

		response, err = handler(ctx, request(http.MethodDelete, "/contracts/lambda-2/execute", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, response.StatusCode)

		response, err = handler(ctx, request(http.MethodPost, "/elsewhere", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, response.StatusCode)
	})
}

func TestParseRoute(t *testing.T) {
	r, ok := parseRoute("/contracts/abc/execute")
	assert.True(t, ok)
	assert.Equal(t, route{address: "abc", entry: "execute"}, r)

	r, ok = parseRoute("/stage/contracts/abc/query/")
	assert.True(t, ok)
	assert.Equal(t, route{address: "abc", entry: "query"}, r)

	_, ok = parseRoute("/contracts/abc")
	assert.False(t, ok)
}
