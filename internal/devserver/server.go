// Package devserver serves the upload and metadata lambdas over plain HTTP
// for local development, translating requests into API Gateway proxy events.
package devserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sh3r4rd/file_metadata/internal/model"
)

// LambdaHandler is the signature of the handlers' Handle methods.
type LambdaHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Handlers are the lambdas served by the dev server. MaxBodyBytes caps the
// raw request body; zero leaves it unbounded.
type Handlers struct {
	Upload       LambdaHandler
	Metadata     LambdaHandler
	MaxBodyBytes int64
}

// New builds the router: POST /upload, GET /metadata/{file_id} and /metrics.
func New(h Handlers, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	m := newMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(m.middleware)

	r.Post("/upload", invoke(h.Upload, h.MaxBodyBytes, logger))
	r.Get("/metadata/{file_id}", invoke(h.Metadata, h.MaxBodyBytes, logger))
	r.Get("/metadata/", invoke(h.Metadata, h.MaxBodyBytes, logger))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}

func invoke(fn LambdaHandler, maxBytes int64, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		req, err := toProxyRequest(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.Info("request body too large", "limit", tooLarge.Limit)
				http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
				return
			}
			logger.Error("read request body", "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := fn(r.Context(), req)
		if err != nil {
			logger.Error("handler error", "err", err)
			http.Error(w, model.MsgInternalError, http.StatusInternalServerError)
			return
		}

		writeProxyResponse(w, resp, logger)
	}
}

// toProxyRequest mirrors how API Gateway presents a binary request: the body
// is base64 encoded and single-valued headers are flattened.
func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	var resource string
	params := map[string]string{}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		resource = rctx.RoutePattern()
		for i, k := range rctx.URLParams.Keys {
			if v := rctx.URLParams.Values[i]; v != "" {
				params[k] = v
			}
		}
	}

	return events.APIGatewayProxyRequest{
		Resource:              resource,
		Path:                  r.URL.Path,
		HTTPMethod:            r.Method,
		Headers:               headers,
		MultiValueHeaders:     r.Header,
		PathParameters:        params,
		Body:                  base64.StdEncoding.EncodeToString(body),
		IsBase64Encoded:       true,
		RequestContext:        events.APIGatewayProxyRequestContext{RequestID: middleware.GetReqID(r.Context())},
		QueryStringParameters: flatten(r.URL.Query()),
	}, nil
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse, logger *slog.Logger) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			logger.Error("decode response body", "err", err)
			http.Error(w, model.MsgInternalError, http.StatusInternalServerError)
			return
		}
		body = decoded
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		logger.Warn("write response", "err", err)
	}
}

func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
