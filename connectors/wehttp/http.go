package wehttp

import (
	"context"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-contracts-go/we"
)

const maxBodySize = 1 << 20

// ContractHost is the part of we.Host served over HTTP.
type ContractHost interface {
	Instantiate(ctx context.Context, address we.ContractAddress, msg we.Data) (we.Result, error)
	Execute(ctx context.Context, address we.ContractAddress, msg we.Data) (we.Result, error)
	Query(ctx context.Context, address we.ContractAddress, msg we.Data) ([]byte, error)
}

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

func NewHandler(host ContractHost, options ...HandlerOption) http.Handler {
	service := &httpService{host: host}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/contracts/{address}", func(r chi.Router) {
		r.Post("/instantiate", service.transact(we.InstantiateEntry, host.Instantiate))
		r.Post("/execute", service.transact(we.ExecuteEntry, host.Execute))
		r.Post("/query", service.query(bodyMessage))
		r.Get("/query", service.query(parameterMessage))
	})

	return otelhttp.NewHandler(r, "we-http")
}

type httpService struct {
	log  *zerolog.Logger
	host ContractHost
}

type transaction = func(ctx context.Context, address we.ContractAddress, msg we.Data) (we.Result, error)

type extractor = func(w http.ResponseWriter, r *http.Request) (we.Data, int, string)

func (service *httpService) transact(entry string, call transaction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := we.ContractAddress(chi.URLParam(r, "address"))

		msg, status, reason := bodyMessage(w, r)
		if status != http.StatusOK {
			service.reject(w, r, status, reason)
			return
		}

		result, err := call(r.Context(), address, msg)
		if err != nil {
			service.log.Info().Err(err).Str("entry", entry).Str("address", address.String()).Msg("contract call failed")
			service.fail(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func (service *httpService) query(extract extractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := we.ContractAddress(chi.URLParam(r, "address"))

		msg, status, reason := extract(w, r)
		if status != http.StatusOK {
			service.reject(w, r, status, reason)
			return
		}

		response, err := service.host.Query(r.Context(), address, msg)
		if err != nil {
			service.log.Info().Err(err).Str("entry", we.QueryEntryName).Str("address", address.String()).Msg("contract query failed")
			service.fail(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(response); err != nil {
			service.log.Warn().Err(err).Msg("failed to write query response")
		}
	}
}

func bodyMessage(_ http.ResponseWriter, r *http.Request) (we.Data, int, string) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != we.JsonEncoding || err != nil {
		return we.Data{}, http.StatusUnsupportedMediaType, "unsupported content type"
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return we.Data{}, http.StatusBadRequest, "invalid request body"
	}

	if len(body) > maxBodySize {
		return we.Data{}, http.StatusRequestEntityTooLarge, "request body too large"
	}

	return we.JsonData(body), http.StatusOK, ""
}

func parameterMessage(_ http.ResponseWriter, r *http.Request) (we.Data, int, string) {
	msg := r.URL.Query().Get("msg")
	if msg == "" {
		return we.Data{}, http.StatusBadRequest, "missing msg parameter"
	}

	return we.JsonData([]byte(msg)), http.StatusOK, ""
}

func (service *httpService) reject(w http.ResponseWriter, r *http.Request, status int, reason string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: reason})
}

func (service *httpService) fail(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, StatusCode(err))
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
