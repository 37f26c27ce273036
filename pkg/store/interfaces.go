package store

import "github.com/svcmock/restdispatch/pkg/domain"

// ServiceRepository resolves virtualized services by their (name, version)
// identity.
type ServiceRepository interface {
	// FindByNameAndVersion returns the service matching name and version,
	// or a zero Service and false if none is registered.
	FindByNameAndVersion(name, version string) (domain.Service, bool)
}

// ResponseRepository looks up canned responses for an operation, indexed
// either by the dispatch criterion that selects them or by their name.
type ResponseRepository interface {
	// FindByOperationIDAndDispatchCriteria returns every response of
	// operationID whose DispatchCriteria equals criteria.
	FindByOperationIDAndDispatchCriteria(operationID, criteria string) []domain.Response
	// FindByOperationIDAndName returns every response of operationID whose
	// Name equals name.
	FindByOperationIDAndName(operationID, name string) []domain.Response
	// FindByOperationID returns every response registered for operationID.
	FindByOperationID(operationID string) []domain.Response
}

// ServiceStateRepository is a key/value store keyed by (serviceID, key),
// used to persist small pieces of cross-request state that SCRIPT
// dispatchers can read and write via a ServiceStateStore handle.
type ServiceStateRepository interface {
	// Get returns the value stored for (serviceID, key), or (nil, false).
	Get(serviceID, key string) (any, bool)
	// Put stores value for (serviceID, key), replacing any prior value.
	Put(serviceID, key string, value any)
	// Delete removes the value stored for (serviceID, key), if any.
	Delete(serviceID, key string)
}
