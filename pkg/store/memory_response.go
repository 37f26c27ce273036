package store

import (
	"sync"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// MemoryResponseRepository is a thread-safe in-memory ResponseRepository,
// grouping responses by operation id the same way the engine looks them
// up: by dispatch criterion, by name, or unfiltered.
type MemoryResponseRepository struct {
	mu        sync.RWMutex
	responses map[string][]domain.Response // operationID -> responses, insertion order preserved
}

// NewMemoryResponseRepository creates an empty MemoryResponseRepository.
func NewMemoryResponseRepository() *MemoryResponseRepository {
	return &MemoryResponseRepository{responses: make(map[string][]domain.Response)}
}

// Put registers a response under its OperationID.
func (r *MemoryResponseRepository) Put(resp domain.Response) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[resp.OperationID] = append(r.responses[resp.OperationID], resp)
}

// FindByOperationIDAndDispatchCriteria implements ResponseRepository.
func (r *MemoryResponseRepository) FindByOperationIDAndDispatchCriteria(operationID, criteria string) []domain.Response {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Response
	for _, resp := range r.responses[operationID] {
		if resp.DispatchCriteria == criteria {
			out = append(out, resp)
		}
	}
	return out
}

// FindByOperationIDAndName implements ResponseRepository.
func (r *MemoryResponseRepository) FindByOperationIDAndName(operationID, name string) []domain.Response {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Response
	for _, resp := range r.responses[operationID] {
		if resp.Name == name {
			out = append(out, resp)
		}
	}
	return out
}

// FindByOperationID implements ResponseRepository.
func (r *MemoryResponseRepository) FindByOperationID(operationID string) []domain.Response {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Response, len(r.responses[operationID]))
	copy(out, r.responses[operationID])
	return out
}

var _ ResponseRepository = (*MemoryResponseRepository)(nil)
