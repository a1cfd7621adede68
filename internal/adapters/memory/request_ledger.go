package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/repositories"
)

// RequestLedger implements repositories.RequestLedger over a slice.
// Sequence ids are assigned under the write lock, so they always equal
// the 1-based position of the request.
type RequestLedger struct {
	mu       sync.RWMutex
	requests []entities.EmergencyRequest
}

var _ repositories.RequestLedger = (*RequestLedger)(nil)

// NewRequestLedger creates an empty ledger
func NewRequestLedger() *RequestLedger {
	return &RequestLedger{}
}

// Append sequences and stores req
func (l *RequestLedger) Append(_ context.Context, req entities.EmergencyRequest) (entities.EmergencyRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req.SequenceID = len(l.requests) + 1
	l.requests = append(l.requests, req)
	return req, nil
}

// List returns all requests in sequence order
func (l *RequestLedger) List(_ context.Context) ([]entities.EmergencyRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]entities.EmergencyRequest, len(l.requests))
	copy(out, l.requests)
	return out, nil
}

// Count returns the number of requests
func (l *RequestLedger) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.requests), nil
}

// Restore replaces the ledger contents. Persisted sequence ids must match
// positions, otherwise the snapshot is rejected.
func (l *RequestLedger) Restore(_ context.Context, requests []entities.EmergencyRequest) error {
	restored := make([]entities.EmergencyRequest, len(requests))
	for i, req := range requests {
		if req.SequenceID != i+1 {
			return fmt.Errorf("restore ledger: request at position %d has sequence id %d", i+1, req.SequenceID)
		}
		restored[i] = req
	}

	l.mu.Lock()
	l.requests = restored
	l.mu.Unlock()
	return nil
}
