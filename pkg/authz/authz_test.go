package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList(t *testing.T) {
	list := NewAllowList(
		[]string{"ops@example.com"},
		[]string{"Admin@Example.com"},
	)

	assert.True(t, list.CanOperate("ops@example.com"))
	assert.True(t, list.CanOperate("OPS@example.com"))
	assert.False(t, list.CanAdminister("ops@example.com"))

	assert.True(t, list.CanAdminister("admin@example.com"))
	assert.True(t, list.CanOperate("admin@example.com"), "admins can operate")

	assert.False(t, list.CanOperate("stranger@example.com"))
	assert.False(t, list.CanAdminister(""))
}
