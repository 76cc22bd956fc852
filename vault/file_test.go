package vault

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLayout(t *testing.T) {
	salt := bytes.Repeat([]byte{0xAA}, SaltLen)
	nonce := bytes.Repeat([]byte{0xBB}, NonceLen)
	ct := bytes.Repeat([]byte{0xCC}, TagLen+5)

	raw := encodeFile(fileHeader{Salt: salt, Nonce: nonce}, ct)
	require.Len(t, raw, SaltLen+NonceLen+len(ct))
	assert.Equal(t, salt, raw[0:32])
	assert.Equal(t, nonce, raw[32:44])
	assert.Equal(t, ct, raw[44:])

	h, gotCT, err := decodeFile(raw)
	require.NoError(t, err)
	assert.Equal(t, salt, h.Salt)
	assert.Equal(t, nonce, h.Nonce)
	assert.Equal(t, ct, gotCT)
}

func TestDecodeFileMinimumLength(t *testing.T) {
	for _, n := range []int{0, 1, 44, MinFileLen - 1} {
		_, _, err := decodeFile(make([]byte, n))
		assert.True(t, errors.Is(err, ErrCorruptedVault), "len %d", n)
	}

	h, ct, err := decodeFile(make([]byte, MinFileLen))
	require.NoError(t, err)
	assert.Len(t, h.Salt, SaltLen)
	assert.Len(t, h.Nonce, NonceLen)
	assert.Len(t, ct, TagLen)
}
