package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordService(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, svc.VerifyPassword(hash, "secret"))
	assert.Error(t, svc.VerifyPassword(hash, "wrong"))
	assert.Error(t, svc.VerifyPassword("not-a-hash", "secret"))
}
