package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	assert.True(t, Verify("correct horse battery staple", encoded))
	assert.False(t, Verify("wrong password", encoded))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("hunter2hunter2")
	require.NoError(t, err)
	second, err := Hash("hunter2hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("hunter2hunter2", first))
	assert.True(t, Verify("hunter2hunter2", second))
}

func TestVerifyRejectsMalformedEncoding(t *testing.T) {
	assert.False(t, Verify("whatever", ""))
	assert.False(t, Verify("whatever", "$argon2id$v=19$bogus"))
	assert.False(t, Verify("whatever", "plaintext"))
}
