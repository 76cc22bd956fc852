package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Suite selects the AEAD used to seal the vault. Both suites use a 96-bit
// nonce and a 128-bit tag so the file layout is identical; the suite is not
// recorded in the file.
type Suite string

const (
	AES256GCM        Suite = "aes-256-gcm"
	ChaCha20Poly1305 Suite = "chacha20-poly1305"
)

func ParseSuite(name string) (Suite, error) {
	switch Suite(name) {
	case "", AES256GCM:
		return AES256GCM, nil
	case ChaCha20Poly1305:
		return ChaCha20Poly1305, nil
	}
	return "", errors.WithHint(
		errors.Newf("vault: unknown cipher %q", name),
		"supported ciphers: aes-256-gcm, chacha20-poly1305")
}

func (s Suite) newAEAD(key []byte) (cipher.AEAD, error) {
	switch s {
	case "", AES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, errors.Wrap(err, "new aes cipher")
		}
		return cipher.NewGCM(block)
	case ChaCha20Poly1305:
		return chacha20poly1305.New(key)
	}
	return nil, errors.Newf("vault: unknown cipher %q", string(s))
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeriveKey runs Argon2id over password and salt. The key is returned in a
// locked buffer; callers must Destroy it once the seal or open is done.
func DeriveKey(password, salt []byte) (*memguard.LockedBuffer, error) {
	if len(salt) != SaltLen {
		return nil, errors.Mark(
			errors.Newf("salt is %d bytes, want %d", len(salt), SaltLen),
			ErrKeyDerivation)
	}
	raw := argon2.IDKey(password, salt, ArgonTime, ArgonMemory, ArgonThreads, KeyLen)
	// NewBufferFromBytes wipes raw.
	return memguard.NewBufferFromBytes(raw), nil
}

// AEADSeal encrypts plaintext under key with a fresh random nonce. The
// returned ciphertext has the tag appended.
func AEADSeal(s Suite, key, plaintext []byte) ([]byte, []byte, error) {
	aead, err := s.newAEAD(key)
	if err != nil {
		return nil, nil, err
	}
	nonce, err := randBytes(aead.NonceSize())
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate nonce")
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ct, nil
}

// AEADOpen authenticates and decrypts ciphertext. Any authentication failure,
// whatever its cause, is reported as ErrAuthFailed.
func AEADOpen(s Suite, key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := s.newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, ErrAuthFailed
	}
	pt, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return pt, nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, ".frt-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
