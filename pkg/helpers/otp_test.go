package helpers

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOTPCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code := GenOTPCode()
		require.Len(t, code, 6, "codes are always zero-padded to 6 digits")
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 1000000)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 150, "codes should not repeat often")
}

func TestNewCode(t *testing.T) {
	code := NewCode("REQ")
	assert.Regexp(t, `^REQ-[0-9a-f]{8}$`, code)
	assert.NotEqual(t, code, NewCode("REQ"))
}
