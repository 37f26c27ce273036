package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/svcmock/restdispatch/internal/id"
	"github.com/svcmock/restdispatch/pkg/domain"
)

// serviceFile is the on-disk shape of a service fixture file: either a
// single service or a list of them.
type serviceFile struct {
	Services []domain.Service `json:"services,omitempty" yaml:"services,omitempty"`
	domain.Service `json:",inline" yaml:",inline"`
}

// UnmarshalYAML accepts either {services: [...]} or a bare single-service
// document.
func (f *serviceFile) UnmarshalYAML(node *yaml.Node) error {
	type alias serviceFile
	var a alias
	if err := node.Decode(&a); err != nil {
		return err
	}
	*f = serviceFile(a)
	return nil
}

// LoadServices reads Service/Operation/Response fixtures from path (a
// single YAML or JSON file). A file may contain either a top-level
// "services" list or a single bare service document. Response fixtures
// are authored nested under the operation they belong to; LoadServices
// stamps each one with its OperationID (see domain.BuildOperationID) and
// returns them separately from the services, mirroring how the engine
// itself keeps services and responses in two different repositories.
func LoadServices(path string) ([]domain.Service, []domain.Response, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}

	var file serviceFile
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	} else {
		if !json.Valid(data) {
			return nil, nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}

	var services []domain.Service
	switch {
	case len(file.Services) > 0:
		services = file.Services
	case file.Service.Name != "":
		services = []domain.Service{file.Service}
	default:
		return nil, nil, nil
	}

	services = assignServiceIDs(services)
	return services, extractResponses(services), nil
}

// extractResponses pulls the Response fixtures nested under each
// operation, stamps each with its OperationID, and clears the nested
// field so the Service value stored in the service repository doesn't
// carry a duplicate copy of response bodies alongside the response
// repository, which is the sole source of truth the engine reads from.
func extractResponses(services []domain.Service) []domain.Response {
	var out []domain.Response
	for si, svc := range services {
		for oi, op := range svc.Operations {
			for _, resp := range op.Responses {
				resp.OperationID = domain.BuildOperationID(svc, op)
				if resp.ID == "" {
					resp.ID = id.Short()
				}
				out = append(out, resp)
			}
			services[si].Operations[oi].Responses = nil
		}
	}
	return out
}

// assignServiceIDs fills in Service.ID for fixtures that omit it, so
// BuildOperationID has a stable storage key without requiring every
// hand-written fixture file to invent one.
func assignServiceIDs(services []domain.Service) []domain.Service {
	for i, svc := range services {
		if svc.ID == "" {
			services[i].ID = id.Short()
		}
	}
	return services
}

// LoadServicesGlob expands pattern (a doublestar glob, e.g.
// "services/**/*.yaml") relative to baseDir and loads every matching
// file via LoadServices, returning the concatenation of their services
// and responses in sorted filename order for deterministic startup.
func LoadServicesGlob(baseDir, pattern string) ([]domain.Service, []domain.Response, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(baseDir, pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to expand glob %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var allServices []domain.Service
	var allResponses []domain.Response
	for _, path := range matches {
		services, responses, err := LoadServices(path)
		if err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", path, err)
		}
		allServices = append(allServices, services...)
		allResponses = append(allResponses, responses...)
	}
	return allServices, allResponses, nil
}
