package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svcmock/restdispatch/pkg/domain"
)

func petService() domain.Service {
	return domain.Service{
		ID:      "pets-1.0",
		Name:    "Pets",
		Version: "1.0",
		Operations: []domain.Operation{
			{
				Name:          "GET /pets/count",
				Method:        "GET",
				ResourcePaths: []string{"/pets/count"},
			},
			{
				Name:          "GET /pets/{id}",
				Method:        "GET",
				ResourcePaths: []string{"/pets/1", "/pets/2"},
			},
		},
	}
}

func TestResolveOperationExactMatch(t *testing.T) {
	svc := petService()
	op := ResolveOperation(svc, "GET", "/pets/1")
	require.NotNil(t, op)
	assert.Equal(t, "GET /pets/{id}", op.Name)
}

func TestResolveOperationExactMatchTrailingSlash(t *testing.T) {
	svc := petService()
	op := ResolveOperation(svc, "GET", "/pets/1/")
	require.NotNil(t, op)
	assert.Equal(t, "GET /pets/{id}", op.Name)
}

func TestResolveOperationPatternFallback(t *testing.T) {
	svc := petService()
	op := ResolveOperation(svc, "GET", "/pets/999")
	require.NotNil(t, op)
	assert.Equal(t, "GET /pets/{id}", op.Name)
}

func TestResolveOperationEarlierDefinitionWinsOnOverlap(t *testing.T) {
	svc := petService()
	// "/pets/count" is registered first and is an exact literal match on
	// its own operation, so it must win even though "/pets/{id}" would
	// also match it as a pattern.
	op := ResolveOperation(svc, "GET", "/pets/count")
	require.NotNil(t, op)
	assert.Equal(t, "GET /pets/count", op.Name)
}

func TestResolveOperationNoMatch(t *testing.T) {
	svc := petService()
	op := ResolveOperation(svc, "DELETE", "/pets/1")
	assert.Nil(t, op)
}

func TestResolveOperationMethodMismatch(t *testing.T) {
	svc := petService()
	op := ResolveOperation(svc, "POST", "/pets/1")
	assert.Nil(t, op)
}
