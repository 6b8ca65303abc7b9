package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := mem.Get(ctx, "nope")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		assert.NoError(t, mem.Set(ctx, "k", "v"))
		v, ok, err := mem.Get(ctx, "k")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		assert.NoError(t, mem.Set(ctx, "k", "v2"))
		v, _, _ := mem.Get(ctx, "k")
		assert.Equal(t, "v2", v)
	})

	t.Run("delete", func(t *testing.T) {
		assert.NoError(t, mem.Delete(ctx, "k"))
		_, ok, _ := mem.Get(ctx, "k")
		assert.False(t, ok)

		// Deleting a missing key is not an error.
		assert.NoError(t, mem.Delete(ctx, "k"))
	})
}

func TestPrefixedScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	local := NewPrefixed(mem, "local:")
	session := NewPrefixed(mem, "session:abc:")

	assert.NoError(t, local.Set(ctx, "pendingSellerId", "S-1"))
	assert.NoError(t, session.Set(ctx, "pendingSellerId", "S-2"))

	v, ok, err := local.Get(ctx, "pendingSellerId")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "S-1", v)

	v, _, _ = session.Get(ctx, "pendingSellerId")
	assert.Equal(t, "S-2", v)

	// The underlying store sees the full keys.
	v, _, _ = mem.Get(ctx, "local:pendingSellerId")
	assert.Equal(t, "S-1", v)

	assert.NoError(t, session.Delete(ctx, "pendingSellerId"))
	_, ok, _ = session.Get(ctx, "pendingSellerId")
	assert.False(t, ok)
	_, ok, _ = local.Get(ctx, "pendingSellerId")
	assert.True(t, ok, "deleting in one scope must not touch the other")
}
