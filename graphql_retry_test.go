package graphql

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

func fastRetryConfig(policy PolicyType) RetryConfig {
	return RetryConfig{
		MaxTries:    3,
		Interval:    0.01,
		Policy:      policy,
		MaxInterval: 0.04,
	}
}

func TestLinearPolicy(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetryConfig(fastRetryConfig(Linear)))
	client.Log = func(str string) {
		t.Log(str)
	}

	var responseData map[string]interface{}
	err := client.Run(context.Background(), &Request{q: "query {}"}, &responseData)
	is.True(strings.HasPrefix(err.Error(), "client has retried 3 times"))
	is.Equal(atomic.LoadInt32(&calls), int32(3))
	is.True(IsTransportErr(err)) // cause survives the wrapping
}

func TestExponentialPolicyRecovers(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"data":{"value":"some data"}}`)
	}))
	defer srv.Close()

	var attempts []int
	client := NewClient(srv.URL,
		WithRetryConfig(fastRetryConfig(ExponentialBackoff)),
		WithBeforeRetryHandler(func(err error, attemptNum int) {
			attempts = append(attempts, attemptNum)
		}),
	)

	var resp struct {
		Value string
	}
	is.NoErr(client.Run(context.Background(), NewRequest("query {}"), &resp))
	is.Equal(resp.Value, "some data")
	is.Equal(attempts, []int{1, 2})
}

func TestRetryOnGraphQLErrorName(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			io.WriteString(w, `{"errors":[{"message":"busy","name":"capacity_exceeded"}]}`)
			return
		}
		io.WriteString(w, `{"data":{"value":"ok"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetryConfig(fastRetryConfig(Linear)))
	var resp struct {
		Value string
	}
	is.NoErr(client.Run(context.Background(), NewRequest("query {}"), &resp))
	is.Equal(resp.Value, "ok")
	is.Equal(atomic.LoadInt32(&calls), int32(2))
}

func TestNoRetryOnOtherGraphQLErrors(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.WriteString(w, `{"errors":[{"message":"customer not found","name":"not_found"}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetryConfig(fastRetryConfig(Linear)))
	err := client.Run(context.Background(), NewRequest("query {}"), nil)
	is.True(IsNotFoundErr(err))
	is.Equal(atomic.LoadInt32(&calls), int32(1))
}

func TestNoRetryByDefault(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Run(context.Background(), NewRequest("query {}"), nil)
	is.Equal(err.Error(), "graphql: server returned a non-200 status code: 503")
	is.Equal(atomic.LoadInt32(&calls), int32(1))
}

func TestRetryStopsOnContext(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetryConfig(RetryConfig{MaxTries: 5, Interval: 10, Policy: Linear}))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := client.Run(ctx, NewRequest("query {}"), nil)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "context finished"))
}

func TestInvalidRetryConfig(t *testing.T) {
	is := is.New(t)
	client := NewClient("http://localhost", WithRetryConfig(RetryConfig{Policy: ExponentialBackoff, MaxTries: 2, Interval: 4, MaxInterval: 1}))
	err := client.Run(context.Background(), NewRequest("query {}"), nil)
	is.Equal(err.Error(), "graphql: invalid retry config")
}

func TestNilRespStatus200(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithDefaultLinearRetryConfig())
	client.Log = func(str string) {
		t.Log(str)
	}

	var responseData map[string]interface{}
	err := client.Run(context.Background(), &Request{q: "query {}"}, &responseData)
	is.NoErr(err)
}

func TestIsErrRetryableNil(t *testing.T) {
	is := is.New(t)
	config := defaultLinearRetryConfig
	flag := config.isErrRetryable(nil)
	is.True(!flag)
}

func TestIncreaseInterval(t *testing.T) {
	is := is.New(t)
	config := defaultExponentialRetryConfig
	for i := 0; i < 6; i++ {
		config.increaseInterval()
	}
	is.Equal(config.Interval, 16.0) // capped at MaxInterval

	linear := defaultLinearRetryConfig
	linear.increaseInterval()
	is.Equal(linear.Interval, 2.0)
}
