package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

func (c *Client) encodeJSON(req *Request) ([]byte, error) {
	var requestBody bytes.Buffer

	requestBodyObj := struct {
		Query         string      `json:"query"`
		Variables     interface{} `json:"variables"`
		OperationName string      `json:"operationName,omitempty"`
	}{
		Query:         req.q,
		Variables:     req.Variables(),
		OperationName: req.OperationName(),
	}

	if err := json.NewEncoder(&requestBody).Encode(requestBodyObj); err != nil {
		return nil, transportErr(err, "encode body")
	}

	c.logf(">> body: %s", bytes.TrimSpace(requestBody.Bytes()))

	if !c.useGzip {
		return requestBody.Bytes(), nil
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(requestBody.Bytes()); err != nil {
		return nil, transportErr(err, "compress body")
	}
	if err := zw.Close(); err != nil {
		return nil, transportErr(err, "compress body")
	}

	return compressed.Bytes(), nil
}

// attempt performs a single round-trip. GraphQL errors in the body are not
// an error at this level; they are returned inside the graphResponse.
func (c *Client) attempt(ctx context.Context, req *Request, body []byte) (*graphResponse, int, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, transportErr(err, "create request")
	}

	r.Close = c.closeReq
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Header.Set("Accept", "application/json; charset=utf-8")
	if c.useGzip {
		r.Header.Set("Content-Encoding", "gzip")
	}
	for key, values := range c.header {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}

	req.CopyHeaders(r)
	c.logf(">> headers: %v", r.Header)

	res, err := c.httpClient.Do(r)
	if err != nil {
		return nil, 0, networkErr(err)
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, res.Body); err != nil {
		return nil, res.StatusCode, &TransportError{StatusCode: res.StatusCode, Err: errors.Wrap(err, "reading body"), network: true}
	}
	c.logf("<< %s", buf.String())

	gr := &graphResponse{}
	if err := json.NewDecoder(&buf).Decode(gr); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, res.StatusCode, statusErr(res.StatusCode)
		}
		return nil, res.StatusCode, transportErr(err, "decoding response")
	}
	if res.StatusCode != http.StatusOK && len(gr.Errors) == 0 {
		return nil, res.StatusCode, statusErr(res.StatusCode)
	}

	return gr, res.StatusCode, nil
}

func (gr *graphResponse) response() (*Response, error) {
	if len(gr.Errors) > 0 {
		// return first error
		return nil, gr.Errors[0]
	}

	return NewResponse(gr.Data)
}
