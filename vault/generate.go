package vault

import (
	"crypto/rand"
	"math/big"

	"github.com/cockroachdb/errors"
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789)(*&^%$#@!~"

// GeneratePassword returns length characters drawn uniformly from a fixed
// alphabet of letters, digits and symbols.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.Newf("vault: invalid password length %d", length)
	}
	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", errors.Wrap(err, "generate password")
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
