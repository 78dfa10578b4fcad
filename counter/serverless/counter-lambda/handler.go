package main

import (
	"context"
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-contracts-go/connectors/wehttp"
	"github.com/weegigs/wee-contracts-go/counter"
	"github.com/weegigs/wee-contracts-go/stores/ds"
	"github.com/weegigs/wee-contracts-go/support"
	"github.com/weegigs/wee-contracts-go/we"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type route struct {
	address we.ContractAddress
	entry   string
}

// parseRoute accepts /contracts/{address}/{entry}, with or without a stage prefix.
func parseRoute(path string) (route, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 {
		return route{}, false
	}

	segments = segments[len(segments)-3:]
	if segments[0] != "contracts" || segments[1] == "" {
		return route{}, false
	}

	return route{address: we.ContractAddress(segments[1]), entry: segments[2]}, true
}

func createHandler(host wehttp.ContractHost, logger *zerolog.Logger) GatewayHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		r, ok := parseRoute(event.RawPath)
		if !ok {
			return failure(http.StatusNotFound, "not found"), nil
		}

		method := event.RequestContext.HTTP.Method
		switch {
		case method == http.MethodGet && r.entry == we.QueryEntryName:
			msg := event.QueryStringParameters["msg"]
			if msg == "" {
				return failure(http.StatusBadRequest, "missing msg parameter"), nil
			}
			return query(ctx, host, logger, r, we.JsonData([]byte(msg))), nil
		case method != http.MethodPost:
			return failure(http.StatusMethodNotAllowed, "method not allowed"), nil
		}

		msg, status, reason := bodyOf(event)
		if status != http.StatusOK {
			return failure(status, reason), nil
		}

		var call func(context.Context, we.ContractAddress, we.Data) (we.Result, error)
		switch r.entry {
		case we.InstantiateEntry:
			call = host.Instantiate
		case we.ExecuteEntry:
			call = host.Execute
		case we.QueryEntryName:
			return query(ctx, host, logger, r, msg), nil
		default:
			return failure(http.StatusNotFound, "not found"), nil
		}

		result, err := call(ctx, r.address, msg)
		if err != nil {
			logger.Info().Err(err).Str("entry", r.entry).Str("address", r.address.String()).Msg("contract call failed")
			return failure(wehttp.StatusCode(err), err.Error()), nil
		}

		body, err := json.Marshal(result)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}

		return respond(http.StatusOK, body), nil
	}
}

func query(ctx context.Context, host wehttp.ContractHost, logger *zerolog.Logger, r route, msg we.Data) events.APIGatewayV2HTTPResponse {
	response, err := host.Query(ctx, r.address, msg)
	if err != nil {
		logger.Info().Err(err).Str("entry", r.entry).Str("address", r.address.String()).Msg("contract query failed")
		return failure(wehttp.StatusCode(err), err.Error())
	}

	return respond(http.StatusOK, response)
}

func bodyOf(event events.APIGatewayV2HTTPRequest) (we.Data, int, string) {
	mediaType, _, err := mime.ParseMediaType(event.Headers["content-type"])
	if mediaType != we.JsonEncoding || err != nil {
		return we.Data{}, http.StatusUnsupportedMediaType, "unsupported content type"
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		body, err = base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return we.Data{}, http.StatusBadRequest, "invalid request body"
		}
	}

	return we.JsonData(body), http.StatusOK, ""
}

func respond(status int, body []byte) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": we.JsonEncoding},
		Body:       string(body),
	}
}

func failure(status int, reason string) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(wehttp.ErrorResponse{Error: reason})
	if err != nil {
		body = []byte(`{"error":"internal error"}`)
	}

	return respond(status, body)
}

func contractHost(host counter.CounterHost) wehttp.ContractHost {
	return host
}

var Live = wire.NewSet(
	support.LoadConfig,
	support.Logger,
	ds.Live,
	counter.NewCounterHost,
	contractHost,
	createHandler,
)
