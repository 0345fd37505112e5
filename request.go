package graphql

import (
	"io/fs"
	"net/http"
	"regexp"

	"github.com/pkg/errors"
)

var operationPattern = regexp.MustCompile(`(mutation|query)\s*([_A-Za-z][_0-9A-Za-z]*)?\s*[({]`)

// Request is a GraphQL request.
type Request struct {
	q     string
	vars  map[string]interface{}
	bound interface{}

	// Header represent any request headers that will be set
	// when the request is made.
	Header http.Header
}

// NewRequest makes a new Request with the specified string.
func NewRequest(q string) *Request {
	req := &Request{
		q:      q,
		Header: make(map[string][]string),
	}

	return req
}

// NewRequestFromFile makes a new Request whose document is read from name
// in fsys. Inline and file-backed documents are interchangeable as long as
// the variable names match.
func NewRequestFromFile(fsys fs.FS, name string) (*Request, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read document %s", name)
	}

	return NewRequest(string(b)), nil
}

// OperationName parses the operation name from the query. Anonymous
// operations yield an empty string.
func (req *Request) OperationName() string {
	m := operationPattern.FindStringSubmatch(req.q)
	if m == nil {
		return ""
	}

	return m[2]
}

// Var sets a variable. Var discards any value set with Bind.
func (req *Request) Var(key string, value interface{}) {
	if req.vars == nil {
		req.vars = make(map[string]interface{})
	}
	req.bound = nil

	req.vars[key] = value
}

// Bind sets the whole variable set from v, usually a struct whose json tags
// name the variables declared by the document. Bind replaces anything set
// with Var.
func (req *Request) Bind(v interface{}) {
	req.vars = nil
	req.bound = v
}

// Variables returns what will be encoded as the variables object: the value
// given to Bind, or the map built by Var, or nil.
func (req *Request) Variables() interface{} {
	if req.bound != nil {
		return req.bound
	}
	if req.vars == nil {
		return nil
	}

	return req.vars
}

// Query gets the query string of this request.
func (req *Request) Query() string {
	return req.q
}

// CopyHeaders copies Request headers to http.Request.
func (req *Request) CopyHeaders(r *http.Request) {
	for key, values := range req.Header {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}
}
