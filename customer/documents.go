package customer

import (
	"embed"
	"io/fs"
)

//go:embed documents/*.graphql
var embedded embed.FS

// updateCustomerDocument is read from the documents FS on every call.
const updateCustomerDocument = "update-customer.graphql"

func defaultDocuments() fs.FS {
	sub, err := fs.Sub(embedded, "documents")
	if err != nil {
		panic(err)
	}
	return sub
}

const getAllCustomersQuery = `query {
    getAllCustomers {
        id
        fullName
        phoneNumber
        address
        createdAt
    }
}`

const getAllCustomersWithFiltersQuery = `query ($fullName: String, $phoneNumber: String, $createdAt: Date) {
    getAllCustomersWithFilters(fullName: $fullName, phoneNumber: $phoneNumber, createdAt: $createdAt) {
        id
        fullName
        phoneNumber
        address
        createdAt
    }
}`

const createCustomerMutation = `mutation ($createCustomerRequest: CreateCustomerRequest) {
    createCustomer(createCustomerRequest: $createCustomerRequest) {
        id
        fullName
        phoneNumber
        address
        createdAt
    }
}`

const partiallyUpdateCustomerMutation = `mutation ($partiallyUpdateCustomerRequest: PartiallyUpdateCustomerRequest, $customerId: String) {
    partiallyUpdateCustomer(customerId: $customerId, partiallyUpdateCustomerRequest: $partiallyUpdateCustomerRequest) {
        id
        fullName
        phoneNumber
        address
        createdAt
    }
}`

const deleteCustomerMutation = `mutation ($customerId: String) {
    deleteCustomer(customerId: $customerId)
}`

// variable sets, one per document

type filterVars struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	CreatedAt   *Date   `json:"createdAt"`
}

type createCustomerVars struct {
	CreateCustomerRequest CreateCustomerRequest `json:"createCustomerRequest"`
}

type updateCustomerVars struct {
	CustomerID            string                `json:"customerId"`
	UpdateCustomerRequest UpdateCustomerRequest `json:"updateCustomerRequest"`
}

type partiallyUpdateCustomerVars struct {
	PartiallyUpdateCustomerRequest PartiallyUpdateCustomerRequest `json:"partiallyUpdateCustomerRequest"`
	CustomerID                     string                         `json:"customerId"`
}

type customerIDVars struct {
	CustomerID string `json:"customerId"`
}
