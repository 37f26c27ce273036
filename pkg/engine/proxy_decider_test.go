package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svcmock/restdispatch/pkg/domain"
)

func TestDecideProxyURLUnconditionalWhenDispatcherIsProxy(t *testing.T) {
	url, ok := decideProxyURL(domain.DispatcherProxy, "http://upstream", "/pets/1", nil, domain.Response{}, true)
	assert.True(t, ok)
	assert.Equal(t, "http://upstream/pets/1", url)
}

func TestDecideProxyURLUnconditionalIgnoresProxyFallback(t *testing.T) {
	fallback := &domain.ProxyFallbackSpecification{ProxyURL: "http://ignored"}
	url, ok := decideProxyURL(domain.DispatcherProxy, "http://upstream/", "/pets/1", fallback, domain.Response{}, true)
	assert.True(t, ok)
	assert.Equal(t, "http://upstream/pets/1", url)
}

func TestDecideProxyURLNoFallbackNoProxy(t *testing.T) {
	_, ok := decideProxyURL(domain.DispatcherSequence, "", "/pets/1", nil, domain.Response{}, false)
	assert.False(t, ok)
}

func TestDecideProxyURLWhenNoResponseSelected(t *testing.T) {
	fallback := &domain.ProxyFallbackSpecification{ProxyURL: "http://upstream/"}
	url, ok := decideProxyURL(domain.DispatcherSequence, "", "/pets/1", fallback, domain.Response{}, false)
	assert.True(t, ok)
	assert.Equal(t, "http://upstream/pets/1", url)
}

func TestDecideProxyURLWhenStatusConditionMatches(t *testing.T) {
	fallback := &domain.ProxyFallbackSpecification{
		ProxyURL:  "http://upstream",
		Condition: &domain.ProxyCondition{StatusEquals: 404},
	}
	selected := domain.Response{Status: "404"}
	url, ok := decideProxyURL(domain.DispatcherSequence, "", "/pets/1", fallback, selected, true)
	assert.True(t, ok)
	assert.Equal(t, "http://upstream/pets/1", url)
}

func TestDecideProxyURLWhenStatusConditionDoesNotMatch(t *testing.T) {
	fallback := &domain.ProxyFallbackSpecification{
		ProxyURL:  "http://upstream",
		Condition: &domain.ProxyCondition{StatusEquals: 404},
	}
	selected := domain.Response{Status: "200"}
	_, ok := decideProxyURL(domain.DispatcherSequence, "", "/pets/1", fallback, selected, true)
	assert.False(t, ok)
}

func TestDecideProxyURLResponseSelectedNoConditionDoesNotProxy(t *testing.T) {
	fallback := &domain.ProxyFallbackSpecification{ProxyURL: "http://upstream"}
	selected := domain.Response{Status: "200"}
	_, ok := decideProxyURL(domain.DispatcherSequence, "", "/pets/1", fallback, selected, true)
	assert.False(t, ok)
}
