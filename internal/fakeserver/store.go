package fakeserver

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const codeNotFound = "NOT_FOUND"

// notFoundError is returned for an unknown customer id. graphql-go copies
// its extensions into the formatted error.
type notFoundError struct {
	id string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("customer not found: %q", e.id)
}

func (e *notFoundError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": codeNotFound}
}

func notFound(id string) error {
	return &notFoundError{id: id}
}

type record struct {
	ID          string
	FullName    string
	PhoneNumber string
	Address     string
	CreatedAt   time.Time
}

func (r record) toMap() map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"fullName":    r.FullName,
		"phoneNumber": r.PhoneNumber,
		"address":     r.Address,
		"createdAt":   r.CreatedAt,
	}
}

type filter struct {
	fullName    *string
	phoneNumber *string
	createdAt   *time.Time
}

func (f filter) match(r record) bool {
	if f.fullName != nil && !strings.Contains(strings.ToLower(r.FullName), strings.ToLower(*f.fullName)) {
		return false
	}
	if f.phoneNumber != nil && r.PhoneNumber != *f.phoneNumber {
		return false
	}
	if f.createdAt != nil && !sameDay(r.CreatedAt, *f.createdAt) {
		return false
	}
	return true
}

// patch holds the optional fields of a partial update.
type patch struct {
	fullName    *string
	phoneNumber *string
	address     *string
}

// store keeps customers in insertion order.
type store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]record
	now     func() time.Time
}

func newStore(now func() time.Time) *store {
	return &store{
		records: make(map[string]record),
		now:     now,
	}
}

func (s *store) list(f filter) []record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]record, 0, len(s.order))
	for _, id := range s.order {
		if r := s.records[id]; f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *store) create(fullName, phoneNumber, address string) record {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := record{
		ID:          uuid.NewString(),
		FullName:    fullName,
		PhoneNumber: phoneNumber,
		Address:     address,
		CreatedAt:   truncateDay(s.now()),
	}
	s.records[r.ID] = r
	s.order = append(s.order, r.ID)
	return r
}

func (s *store) replace(id, fullName, phoneNumber, address string) (record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return record{}, notFound(id)
	}
	r.FullName, r.PhoneNumber, r.Address = fullName, phoneNumber, address
	s.records[id] = r
	return r, nil
}

func (s *store) patch(id string, p patch) (record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return record{}, notFound(id)
	}
	if p.fullName != nil {
		r.FullName = *p.fullName
	}
	if p.phoneNumber != nil {
		r.PhoneNumber = *p.phoneNumber
	}
	if p.address != nil {
		r.Address = *p.address
	}
	s.records[id] = r
	return r, nil
}

func (s *store) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return truncateDay(a).Equal(truncateDay(b))
}
