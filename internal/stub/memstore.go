package stub

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"procurepay/internal/model"
)

// MemStore keeps everything in process memory. Zero setup, fresh on every
// run, used by tests and as the default for the stub server.
type MemStore struct {
	mu          sync.RWMutex
	users       map[int64]*User
	requests    map[int64]*Request
	approvals   map[int64][]Approval         // request id -> history
	validations map[int64]*ReceiptValidation // request id -> validation

	nextUser       int64
	nextRequest    int64
	nextApproval   int64
	nextValidation int64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[int64]*User),
		requests:    make(map[int64]*Request),
		approvals:   make(map[int64][]Approval),
		validations: make(map[int64]*ReceiptValidation),
	}
}

func (s *MemStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return errUserExists
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = time.Now()
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *MemStore) UserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) CreateRequest(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRequest++
	r.ID = s.nextRequest
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	clone := *r
	clone.Approvals = nil
	clone.Validation = nil
	s.requests[r.ID] = &clone
	return nil
}

// loadLocked materializes a request with its relations. Caller holds the lock.
func (s *MemStore) loadLocked(id int64) (*Request, error) {
	r, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r
	history := s.approvals[id]
	clone.Approvals = make([]Approval, len(history))
	copy(clone.Approvals, history)
	if v, ok := s.validations[id]; ok {
		vClone := *v
		clone.Validation = &vClone
	}
	return &clone, nil
}

func (s *MemStore) RequestByID(_ context.Context, id int64) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadLocked(id)
}

func (s *MemStore) UpdateRequest(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[r.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *r
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	updated.Approvals = nil
	updated.Validation = nil
	s.requests[r.ID] = &updated
	return nil
}

func (s *MemStore) DeleteRequest(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return ErrNotFound
	}
	delete(s.requests, id)
	delete(s.approvals, id)
	delete(s.validations, id)
	return nil
}

// collectLocked returns loaded clones of every request matching keep, sorted
// newest first like the production API. Caller holds at least a read lock.
func (s *MemStore) collectLocked(keep func(*Request) bool) []Request {
	out := make([]Request, 0, len(s.requests))
	for id, r := range s.requests {
		if !keep(r) {
			continue
		}
		loaded, _ := s.loadLocked(id)
		out = append(out, *loaded)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemStore) RequestsByCreator(_ context.Context, userID int64) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(r *Request) bool { return r.CreatedBy == userID }), nil
}

func (s *MemStore) RequestsByStatus(_ context.Context, statuses ...model.Status) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(r *Request) bool {
		for _, st := range statuses {
			if r.Status == string(st) {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemStore) RequestsReviewedBy(_ context.Context, approverID int64) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(r *Request) bool {
		for _, a := range s.approvals[r.ID] {
			if a.Approver == approverID {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemStore) RequestsWithPurchaseOrder(_ context.Context) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectLocked(func(r *Request) bool { return r.PurchaseOrderFile != "" }), nil
}

func (s *MemStore) CreateApproval(_ context.Context, a *Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[a.RequestID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.approvals[a.RequestID] {
		if existing.Level == a.Level {
			return errLevelDecided
		}
	}
	s.nextApproval++
	a.ID = s.nextApproval
	s.approvals[a.RequestID] = append(s.approvals[a.RequestID], *a)
	return nil
}

func (s *MemStore) CreateReceiptValidation(_ context.Context, v *ReceiptValidation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[v.RequestID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.validations[v.RequestID]; ok {
		return errAlreadyValidated
	}
	s.nextValidation++
	v.ID = s.nextValidation
	clone := *v
	s.validations[v.RequestID] = &clone
	return nil
}
