package graphql

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, r.Method, http.MethodPost)
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, string(b), `{"query":"query {}","variables":null}`+"\n")
		_, _ = io.WriteString(w, `{
			"data": {
				"something": "yes"
			}
		}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	var responseData map[string]interface{}
	err := client.Run(ctx, &Request{q: "query {}"}, &responseData)
	assert.NoError(t, err)
	assert.Equal(t, calls, 1) // calls
	assert.Equal(t, responseData["something"], "yes")
}

func TestDoJSONServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, r.Method, http.MethodPost)
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, string(b), `{"query":"query {}","variables":null}`+"\n")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `Internal Server Error`)
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	var responseData map[string]interface{}
	err := client.Run(ctx, &Request{q: "query {}"}, &responseData)
	assert.Equal(t, calls, 1) // calls
	assert.Equal(t, err.Error(), "graphql: server returned a non-200 status code: 500")
	assert.True(t, IsTransportErr(err))
	assert.False(t, IsGraphQLErr(err))

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
}

func TestDoJSONBadRequestErr(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, `{"query":"query {}","variables":null}`+"\n", string(b))
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{
			"errors": [{
				"message": "miscellaneous message as to why the the request was bad"
			}]
		}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewClient(srv.URL)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	var responseData map[string]interface{}
	err := client.Run(ctx, &Request{q: "query {}"}, &responseData)
	assert.Equal(t, calls, 1) // calls
	assert.Equal(t, "graphql: miscellaneous message as to why the the request was bad", err.Error())
	assert.True(t, IsGraphQLErr(err))
	assert.True(t, IsTransportErr(err))
}

func TestDoJSONFirstErrorWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"data": {"deleteCustomer": null},
			"errors": [
				{"message": "customer not found", "path": ["deleteCustomer"], "extensions": {"code": "NOT_FOUND"}},
				{"message": "second"}
			]
		}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Post(context.Background(), NewRequest("mutation { deleteCustomer }"))
	require.Error(t, err)
	assert.Equal(t, "graphql: customer not found", err.Error())
	assert.True(t, IsNotFoundErr(err))

	var gerr Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, []interface{}{"deleteCustomer"}, gerr.Path)
}

func TestDoJSONUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Post(context.Background(), NewRequest("query {}"))
	require.Error(t, err)
	assert.True(t, IsTransportErr(err))
	assert.True(t, strings.HasPrefix(err.Error(), "graphql: decoding response"))
}

func TestQueryJSON(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, `{"query":"query {}","variables":{"username":"matryer"}}`+"\n", string(b))
		_, err = io.WriteString(w, `{"data":{"value":"some data"}}`)
		assert.NoError(t, err)
	}))
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	client := NewClient(srv.URL)

	req := NewRequest("query {}")
	req.Var("username", "matryer")

	// check variables
	assert.NotNil(t, req)
	assert.Equal(t, "matryer", req.vars["username"])

	var resp struct {
		Value string
	}
	err := client.Run(ctx, req, &resp)
	assert.NoError(t, err)
	assert.Equal(t, calls, 1)

	assert.Equal(t, "some data", resp.Value)
}

func TestBoundVariablesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"query":"query ($name: String, $phone: String) {}","variables":{"name":"Jane","phone":null}}`, string(b))
		_, _ = io.WriteString(w, `{"data":{"customers":[{"name":"Jane"}]}}`)
	}))
	defer srv.Close()

	req := NewRequest("query ($name: String, $phone: String) {}")
	name := "Jane"
	req.Bind(struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}{Name: &name})

	resp, err := NewClient(srv.URL).Post(context.Background(), req)
	require.NoError(t, err)

	var customers []struct{ Name string }
	require.NoError(t, resp.Get("customers", &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Jane", customers[0].Name)
}

func TestOperationNameJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"query":"query listCustomers($name: String) {}","variables":{"name":"Jane","phone":null},"operationName":"listCustomers"}`, string(b))
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	defer srv.Close()

	req := NewRequest("query listCustomers($name: String) {}")
	name := "Jane"
	req.Bind(struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}{Name: &name})

	var logs []string
	client := NewClient(srv.URL)
	client.Log = func(s string) { logs = append(logs, s) }

	_, err := client.Post(context.Background(), req)
	require.NoError(t, err)

	require.NotEmpty(t, logs)
	assert.Equal(t, `>> body: {"query":"query listCustomers($name: String) {}","variables":{"name":"Jane","phone":null},"operationName":"listCustomers"}`, logs[0])
	for _, l := range logs {
		assert.NotContains(t, l, "0x")
	}
}

func TestHeader(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "123", r.Header.Get("X-Custom-Header"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))

		_, err := io.WriteString(w, `{"data":{"value":"some data"}}`)
		assert.NoError(t, err)
	}))
	defer srv.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	client := NewClient(srv.URL, WithHeader("Authorization", "Bearer token"))

	req := NewRequest("query {}")
	req.Header.Set("X-Custom-Header", "123")

	var resp struct {
		Value string
	}
	err := client.Run(ctx, req, &resp)
	assert.NoError(t, err)
	assert.Equal(t, calls, 1)

	assert.Equal(t, "some data", resp.Value)
}

func TestWithClient(t *testing.T) {
	var calls int

	testClient := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			resp := &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"data":{"key":"value"}}`)),
			}
			return resp, nil
		}),
	}

	ctx := context.Background()
	client := NewClient("", WithHTTPClient(testClient))

	req := NewRequest(`mutation test()`)
	err := client.Run(ctx, req, nil)
	require.NoError(t, err)

	require.Equal(t, calls, 1) // calls
}

func TestImmediatelyCloseReqBody(t *testing.T) {
	var calls int
	testClient := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			assert.True(t, req.Close)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"data":{}}`)),
			}, nil
		}),
	}

	client := NewClient("", WithHTTPClient(testClient), ImmediatelyCloseReqBody())
	require.NoError(t, client.Run(context.Background(), NewRequest("query {}"), nil))
	require.Equal(t, 1, calls)
}

func TestCanceledContext(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Post(ctx, NewRequest("query {}"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}
