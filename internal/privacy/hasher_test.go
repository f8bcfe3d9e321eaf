package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPHasher_Deterministic(t *testing.T) {
	hasher := NewIPHasher("test-salt")

	first := hasher.HashIP("203.0.113.7")
	second := hasher.HashIP("203.0.113.7")
	assert.Equal(t, first, second, "same IP and salt must always produce the same digest")
	assert.Len(t, first, 64)
	assert.NotContains(t, first, "203.0.113.7")
}

func TestIPHasher_SaltSeparatesInstalls(t *testing.T) {
	a := NewIPHasher("salt-a")
	b := NewIPHasher("salt-b")

	assert.NotEqual(t, a.HashIP("203.0.113.7"), b.HashIP("203.0.113.7"),
		"rotating the salt invalidates all historical dedup keys")
}

func TestIPHasher_DistinctInputs(t *testing.T) {
	hasher := NewIPHasher("test-salt")
	assert.NotEqual(t, hasher.HashIP("203.0.113.7"), hasher.HashIP("203.0.113.8"))
	assert.NotEqual(t, hasher.HashIP(""), hasher.HashIP("203.0.113.7"))
}
