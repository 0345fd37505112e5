// Package customer issues the queries and mutations of a remote
// customer-management GraphQL service and maps the results to Customer
// values.
package customer

import (
	"context"
	"io/fs"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/polovyi/graphql"
)

// ErrInvalidCustomerID is returned, before anything is sent, when an
// operation gets an empty customer id.
var ErrInvalidCustomerID = errors.New("customer: customer id is required")

// Transport sends a GraphQL request and returns the data of the response.
// *graphql.Client implements it.
type Transport interface {
	Post(ctx context.Context, req *graphql.Request) (*graphql.Response, error)
}

// Client is safe for concurrent use; it holds no state between calls.
type Client struct {
	transport Transport
	documents fs.FS
	logger    log.Logger
	validate  *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDocuments replaces the file system file-backed documents are read
// from. It must contain update-customer.graphql.
func WithDocuments(fsys fs.FS) Option {
	return func(c *Client) {
		c.documents = fsys
	}
}

// NewClient returns a Client sending its requests through t.
func NewClient(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		documents: defaultDocuments(),
		logger:    log.NewNopLogger(),
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAllCustomers returns every customer in server order.
func (c *Client) ListAllCustomers(ctx context.Context) ([]Customer, error) {
	c.info("getAllCustomers", "calling query")

	resp, err := c.transport.Post(ctx, graphql.NewRequest(getAllCustomersQuery))
	if err != nil {
		return nil, err
	}

	var customers []Customer
	if err := resp.Get("getAllCustomers", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// ListCustomersWithFilters returns the customers matching f. Unset filter
// fields are sent as null.
func (c *Client) ListCustomersWithFilters(ctx context.Context, f Filter) ([]Customer, error) {
	c.info("getAllCustomersWithFilters", "calling query")

	req := graphql.NewRequest(getAllCustomersWithFiltersQuery)
	req.Bind(filterVars{
		FullName:    f.FullName,
		PhoneNumber: f.PhoneNumber,
		CreatedAt:   f.CreatedAt,
	})
	resp, err := c.transport.Post(ctx, req)
	if err != nil {
		return nil, err
	}

	var customers []Customer
	if err := resp.Get("getAllCustomersWithFilters", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateCustomer creates a customer and returns the id the server assigned.
func (c *Client) CreateCustomer(ctx context.Context, r CreateCustomerRequest) (string, error) {
	c.info("createCustomer", "calling mutation")

	req := graphql.NewRequest(createCustomerMutation)
	req.Bind(createCustomerVars{CreateCustomerRequest: r})
	resp, err := c.transport.Post(ctx, req)
	if err != nil {
		return "", err
	}

	var created Customer
	if err := resp.Get("createCustomer", &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", &graphql.ResponseShapeError{Field: "createCustomer.id", Err: errors.New("missing from response")}
	}
	return created.ID, nil
}

// UpdateCustomer replaces every field of the customer with id customerID.
// Its document is read from the documents file system.
func (c *Client) UpdateCustomer(ctx context.Context, customerID string, r UpdateCustomerRequest) error {
	c.info("updateCustomer", "calling mutation")

	if err := c.checkID(customerID); err != nil {
		return err
	}
	req, err := graphql.NewRequestFromFile(c.documents, updateCustomerDocument)
	if err != nil {
		return err
	}
	req.Bind(updateCustomerVars{CustomerID: customerID, UpdateCustomerRequest: r})
	_, err = c.transport.Post(ctx, req)
	return err
}

// PartiallyUpdateCustomer changes the fields set in r and leaves the rest.
func (c *Client) PartiallyUpdateCustomer(ctx context.Context, customerID string, r PartiallyUpdateCustomerRequest) error {
	c.info("partiallyUpdateCustomer", "calling mutation")

	if err := c.checkID(customerID); err != nil {
		return err
	}
	req := graphql.NewRequest(partiallyUpdateCustomerMutation)
	req.Bind(partiallyUpdateCustomerVars{PartiallyUpdateCustomerRequest: r, CustomerID: customerID})
	_, err := c.transport.Post(ctx, req)
	return err
}

// DeleteCustomer deletes the customer with id customerID.
func (c *Client) DeleteCustomer(ctx context.Context, customerID string) error {
	c.info("deleteCustomer", "calling mutation")

	if err := c.checkID(customerID); err != nil {
		return err
	}
	req := graphql.NewRequest(deleteCustomerMutation)
	req.Bind(customerIDVars{CustomerID: customerID})
	_, err := c.transport.Post(ctx, req)
	return err
}

func (c *Client) checkID(customerID string) error {
	if err := c.validate.Var(customerID, "required"); err != nil {
		return ErrInvalidCustomerID
	}
	return nil
}

func (c *Client) info(operation, msg string) {
	level.Info(c.logger).Log("component", "customer", "operation", operation, "msg", msg)
}
