package graphql

import (
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/matryer/is"
)

func TestOperationName(t *testing.T) {
	is := is.New(t)

	is.Equal(NewRequest(`mutation test() {}`).OperationName(), "test")
	is.Equal(NewRequest(`query getCustomers($id: String) { a }`).OperationName(), "getCustomers")
	is.Equal(NewRequest(`query { a }`).OperationName(), "")
	is.Equal(NewRequest(`mutation ($customerId: String) { a }`).OperationName(), "")
	is.Equal(NewRequest(`{ a }`).OperationName(), "")
}

func TestVarAndBind(t *testing.T) {
	is := is.New(t)

	req := NewRequest("query {}")
	is.Equal(req.Variables(), nil)

	req.Var("a", 1)
	is.Equal(req.Variables(), map[string]interface{}{"a": 1})

	type vars struct {
		ID string `json:"id"`
	}
	req.Bind(vars{ID: "c1"})
	is.Equal(req.Variables(), vars{ID: "c1"}) // Bind replaces Var

	req.Var("b", 2)
	is.Equal(req.Variables(), map[string]interface{}{"b": 2}) // Var replaces Bind
}

func TestNewRequestFromFile(t *testing.T) {
	is := is.New(t)
	fsys := fstest.MapFS{
		"update.graphql": &fstest.MapFile{Data: []byte("mutation ($id: String) { update(id: $id) }")},
	}

	req, err := NewRequestFromFile(fsys, "update.graphql")
	is.NoErr(err)
	is.Equal(req.Query(), "mutation ($id: String) { update(id: $id) }")
	is.True(req.Header != nil)

	_, err = NewRequestFromFile(fsys, "missing.graphql")
	is.True(err != nil)
}

func TestCopyHeaders(t *testing.T) {
	is := is.New(t)

	req := NewRequest("query {}")
	req.Header.Add("X-A", "1")
	req.Header.Add("X-A", "2")

	r, err := http.NewRequest(http.MethodPost, "http://localhost", nil)
	is.NoErr(err)
	req.CopyHeaders(r)
	is.Equal(r.Header.Values("X-A"), []string{"1", "2"})
}
