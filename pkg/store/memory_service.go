package store

import (
	"sync"

	"github.com/svcmock/restdispatch/pkg/domain"
)

// MemoryServiceRepository is a thread-safe in-memory ServiceRepository.
// It is the default backend for the mock server: services are read-mostly
// snapshots loaded once at startup (see pkg/config.LoadServices) and
// looked up on every request.
type MemoryServiceRepository struct {
	mu       sync.RWMutex
	services map[string]domain.Service
}

// NewMemoryServiceRepository creates an empty MemoryServiceRepository.
func NewMemoryServiceRepository() *MemoryServiceRepository {
	return &MemoryServiceRepository{services: make(map[string]domain.Service)}
}

// Put registers or replaces a service under its (Name, Version) identity.
func (r *MemoryServiceRepository) Put(svc domain.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[key(svc.Name, svc.Version)] = svc
}

// FindByNameAndVersion implements ServiceRepository.
func (r *MemoryServiceRepository) FindByNameAndVersion(name, version string) (domain.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[key(name, version)]
	return svc, ok
}

// List returns every registered service, in no particular order.
func (r *MemoryServiceRepository) List() []domain.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Service, 0, len(r.services))
	for _, svc := range r.services {
		result = append(result, svc)
	}
	return result
}

func key(name, version string) string {
	return name + "\x00" + version
}

var _ ServiceRepository = (*MemoryServiceRepository)(nil)
