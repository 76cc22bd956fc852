package vault

import "fmt"

const (
	KeyLen   = 32
	SaltLen  = 32
	NonceLen = 12
	TagLen   = 16

	// MinFileLen is the smallest byte sequence that can hold a salt, a nonce
	// and an authentication tag over an empty plaintext.
	MinFileLen = SaltLen + NonceLen + TagLen

	// Argon2id parameters. Changing any of them makes existing vaults unreadable.
	ArgonMemory  uint32 = 64 * 1024 // KiB
	ArgonTime    uint32 = 3
	ArgonThreads uint8  = 4

	IntegrityMarker = "valid"

	DefaultPasswordLength = 32
)

// Entry is one credential record. Identifier is the lookup key but is not
// required to be unique.
type Entry struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// String renders the entry with its password masked.
func (e Entry) String() string {
	return fmt.Sprintf("%s (%s): '*****'", e.Identifier, e.Username)
}

type fileHeader struct {
	Salt  []byte
	Nonce []byte
}
