// Package fakeserver is an in-memory customer-management GraphQL service.
// It executes the customer schema with graphql-go and serves it over HTTP.
package fakeserver

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

// Server is an http.Handler answering GraphQL POST requests.
type Server struct {
	schema graphql.Schema
	store  *store
	logger log.Logger
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock sets the source of creation dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns an empty Server.
func New(options ...Option) (*Server, error) {
	s := &Server{
		logger: log.NewNopLogger(),
		now:    time.Now,
	}
	for _, option := range options {
		option(s)
	}
	s.store = newStore(func() time.Time { return s.now() })

	schema, err := newSchema(s.store)
	if err != nil {
		return nil, errors.Wrap(err, "build schema")
	}
	s.schema = schema
	return s, nil
}

// Seed adds a customer directly to the store and returns its id.
func (s *Server) Seed(fullName, phoneNumber, address string) string {
	return s.store.create(fullName, phoneNumber, address).ID
}

type requestBody struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type responseError struct {
	Message    string                 `json:"message"`
	Name       string                 `json:"name,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

type responseBody struct {
	Data   interface{}     `json:"data"`
	Errors []responseError `json:"errors,omitempty"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := decodeBody(r)
	if err != nil {
		level.Warn(s.logger).Log("msg", "bad request", "err", err)
		s.encode(w, http.StatusBadRequest, responseBody{Errors: []responseError{{Message: err.Error()}}})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		OperationName:  body.OperationName,
		Context:        r.Context(),
	})

	resp := responseBody{Data: result.Data}
	for _, e := range result.Errors {
		re := responseError{Message: e.Message, Extensions: e.Extensions}
		if code, _ := e.Extensions["code"].(string); code == codeNotFound {
			re.Name = "not_found"
		}
		resp.Errors = append(resp.Errors, re)
	}
	level.Debug(s.logger).Log("msg", "executed", "operation", body.OperationName, "errors", len(resp.Errors))

	s.encode(w, http.StatusOK, resp)
}

func (s *Server) encode(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(s.logger).Log("msg", "encode response", "err", err)
	}
}

func decodeBody(r *http.Request) (requestBody, error) {
	var body requestBody
	var reader io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return body, errors.Wrap(err, "gzip body")
		}
		defer zr.Close()
		reader = zr
	}
	if err := json.NewDecoder(reader).Decode(&body); err != nil {
		return body, errors.Wrap(err, "decode body")
	}
	if body.Query == "" {
		return body, errors.New("query is required")
	}
	return body, nil
}
