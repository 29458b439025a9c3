package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	t.Run("not found with detail", func(t *testing.T) {
		err := NotFound("farm", "id %d", 42)
		assert.Equal(t, "farm not found: id 42", err.Error())
	})

	t.Run("not found without detail", func(t *testing.T) {
		err := &NotFoundError{Resource: "invitation"}
		assert.Equal(t, "invitation not found", err.Error())
	})

	t.Run("forbidden carries reason verbatim", func(t *testing.T) {
		err := Forbidden("missing permission: %s", "FIELD_CREATE")
		assert.Equal(t, "missing permission: FIELD_CREATE", err.Error())
	})

	t.Run("conflict", func(t *testing.T) {
		err := Conflict("membership", "user 7 in farm 3")
		assert.Equal(t, "membership already exists: user 7 in farm 3", err.Error())
	})
}

func TestKindChecks(t *testing.T) {
	nf := NotFound("role", "OWNER")
	fb := Forbidden("cannot remove yourself")
	cf := Conflict("membership", "")

	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(fb))

	assert.True(t, IsForbidden(fb))
	assert.False(t, IsForbidden(cf))

	assert.True(t, IsConflict(cf))
	assert.False(t, IsConflict(nf))
}

func TestKindChecksThroughWrapping(t *testing.T) {
	inner := Forbidden("not a member of tenant")
	wrapped := fmt.Errorf("authorize: %w", inner)

	assert.True(t, IsForbidden(wrapped))
	assert.False(t, IsNotFound(wrapped))
}
