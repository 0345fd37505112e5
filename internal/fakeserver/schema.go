package fakeserver

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

func parseDate(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return t
}

var dateScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "Calendar date, YYYY-MM-DD.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case time.Time:
			return v.Format(dateLayout)
		case *time.Time:
			if v == nil {
				return nil
			}
			return v.Format(dateLayout)
		}
		return nil
	},
	ParseValue: parseDate,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDate(v.Value)
		}
		return nil
	},
})

func customerFields() graphql.InputObjectConfigFieldMap {
	return graphql.InputObjectConfigFieldMap{
		"fullName":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"phoneNumber": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"address":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	}
}

func newSchema(s *store) (graphql.Schema, error) {
	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"fullName":    &graphql.Field{Type: graphql.String},
			"phoneNumber": &graphql.Field{Type: graphql.String},
			"address":     &graphql.Field{Type: graphql.String},
			"createdAt":   &graphql.Field{Type: dateScalar},
		},
	})
	createInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CreateCustomerRequest",
		Fields: customerFields(),
	})
	updateInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UpdateCustomerRequest",
		Fields: customerFields(),
	})
	patchInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "PartiallyUpdateCustomerRequest",
		Fields: customerFields(),
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getAllCustomers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return toMaps(s.list(filter{})), nil
				},
			},
			"getAllCustomersWithFilters": &graphql.Field{
				Type: graphql.NewList(customerType),
				Args: graphql.FieldConfigArgument{
					"fullName":    &graphql.ArgumentConfig{Type: graphql.String},
					"phoneNumber": &graphql.ArgumentConfig{Type: graphql.String},
					"createdAt":   &graphql.ArgumentConfig{Type: dateScalar},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f := filter{
						fullName:    optString(p.Args, "fullName"),
						phoneNumber: optString(p.Args, "phoneNumber"),
					}
					if t, ok := p.Args["createdAt"].(time.Time); ok {
						f.createdAt = &t
					}
					return toMaps(s.list(f)), nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"createCustomerRequest": &graphql.ArgumentConfig{Type: createInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, ok := p.Args["createCustomerRequest"].(map[string]interface{})
					if !ok {
						return nil, errors.New("createCustomerRequest is required")
					}
					r := s.create(str(in, "fullName"), str(in, "phoneNumber"), str(in, "address"))
					return r.toMap(), nil
				},
			},
			"updateCustomer": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"customerId":            &graphql.ArgumentConfig{Type: graphql.String},
					"updateCustomerRequest": &graphql.ArgumentConfig{Type: updateInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, ok := p.Args["updateCustomerRequest"].(map[string]interface{})
					if !ok {
						return nil, errors.New("updateCustomerRequest is required")
					}
					id, _ := p.Args["customerId"].(string)
					if _, err := s.replace(id, str(in, "fullName"), str(in, "phoneNumber"), str(in, "address")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"partiallyUpdateCustomer": &graphql.Field{
				Type: customerType,
				Args: graphql.FieldConfigArgument{
					"customerId":                     &graphql.ArgumentConfig{Type: graphql.String},
					"partiallyUpdateCustomerRequest": &graphql.ArgumentConfig{Type: patchInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in, _ := p.Args["partiallyUpdateCustomerRequest"].(map[string]interface{})
					id, _ := p.Args["customerId"].(string)
					r, err := s.patch(id, patch{
						fullName:    optString(in, "fullName"),
						phoneNumber: optString(in, "phoneNumber"),
						address:     optString(in, "address"),
					})
					if err != nil {
						return nil, err
					}
					return r.toMap(), nil
				},
			},
			"deleteCustomer": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"customerId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["customerId"].(string)
					if err := s.delete(id); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func toMaps(records []record) []interface{} {
	out := make([]interface{}, 0, len(records))
	for _, r := range records {
		out = append(out, r.toMap())
	}
	return out
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func optString(m map[string]interface{}, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}
