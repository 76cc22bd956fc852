package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "vault.frt"), AES256GCM, zap.NewNop())
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	entries := []Entry{
		{Identifier: "Gmail", Username: "user@gmail.com", Password: "super_secret_123"},
		{Identifier: "GitHub", Username: "developer", Password: "github_token_456"},
		{Identifier: "Gmail", Username: "second", Password: "ünïcødé"},
	}

	require.NoError(t, s.Save([]byte("my_master_password"), entries))

	got, err := s.Load([]byte("my_master_password"))
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestStoreWrongPassword(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]byte("correct_password"), []Entry{{Identifier: "Test", Username: "test", Password: "test123"}}))

	_, err := s.Load([]byte("wrong_password"))
	assert.True(t, errors.Is(err, ErrInvalidMasterPassword), "got %v", err)
}

func TestStoreNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load([]byte("pw"))
	assert.True(t, errors.Is(err, ErrVaultNotFound), "got %v", err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestStoreNotFoundMissingDirectory(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing", "vault.frt"), AES256GCM, zap.NewNop())
	_, err := s.Load([]byte("pw"))
	assert.True(t, errors.Is(err, ErrVaultNotFound), "got %v", err)
	assert.False(t, errors.Is(err, ErrIO))
}

func TestStoreSaveThroughSymlink(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "dest.frt")
	link := filepath.Join(dir, "link.frt")
	pw := []byte("pw")

	require.NoError(t, NewStore(dest, AES256GCM, nil).Save(pw, nil))
	require.NoError(t, os.Symlink(dest, link))

	entries := []Entry{{Identifier: "mail", Username: "u", Password: "p"}}
	require.NoError(t, NewStore(link, AES256GCM, nil).Save(pw, entries))

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink, "link was replaced by a regular file")

	got, err := NewStore(dest, AES256GCM, nil).Load(pw)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	fi, err = os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func TestStoreSaveThroughDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "link.frt")
	require.NoError(t, os.Symlink("real.frt", link))

	s := NewStore(link, AES256GCM, nil)
	require.NoError(t, s.Save([]byte("pw"), []Entry{{Identifier: "a", Username: "b", Password: "c"}}))

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink)

	got, err := NewStore(filepath.Join(dir, "real.frt"), AES256GCM, nil).Load([]byte("pw"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreTruncatedFile(t *testing.T) {
	s := newTestStore(t)
	for _, n := range []int{0, 10, MinFileLen - 1} {
		require.NoError(t, os.WriteFile(s.Path(), make([]byte, n), 0600))
		_, err := s.Load([]byte("pw"))
		assert.True(t, errors.Is(err, ErrCorruptedVault), "len %d: got %v", n, err)
	}
}

func TestStoreTamper(t *testing.T) {
	s := newTestStore(t)
	password := []byte("pw")
	require.NoError(t, s.Save(password, []Entry{{Identifier: "a", Username: "b", Password: "c"}}))

	orig, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	offsets := map[string]int{
		"salt":       0,
		"nonce":      SaltLen,
		"ciphertext": SaltLen + NonceLen,
		"tag":        len(orig) - 1,
	}
	for name, off := range offsets {
		t.Run(name, func(t *testing.T) {
			raw := append([]byte(nil), orig...)
			raw[off] ^= 0x80
			require.NoError(t, os.WriteFile(s.Path(), raw, 0600))

			_, err := s.Load(password)
			assert.True(t, errors.Is(err, ErrInvalidMasterPassword), "got %v", err)
		})
	}
}

func TestStoreSaveUsesFreshSaltAndNonce(t *testing.T) {
	s := newTestStore(t)
	password := []byte("pw")

	require.NoError(t, s.Save(password, nil))
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.Save(password, nil))
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.NotEqual(t, first[:SaltLen], second[:SaltLen])
	assert.NotEqual(t, first[SaltLen:SaltLen+NonceLen], second[SaltLen:SaltLen+NonceLen])

	// The old salt's key must not open the new blob.
	h1, _, err := decodeFile(first)
	require.NoError(t, err)
	h2, ct2, err := decodeFile(second)
	require.NoError(t, err)
	oldKey, err := DeriveKey(password, h1.Salt)
	require.NoError(t, err)
	defer oldKey.Destroy()
	_, err = AEADOpen(AES256GCM, oldKey.Bytes(), h2.Nonce, ct2)
	assert.True(t, errors.Is(err, ErrAuthFailed))
}

func TestStoreSaveWritesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s := NewStore(filepath.Join(dir, "vault.frt"), "", nil)

	require.NoError(t, s.Save([]byte("pw"), nil))
	require.NoError(t, s.Save([]byte("pw"), nil))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "temporary files must not be left behind")
	assert.Equal(t, "vault.frt", files[0].Name())

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStoreSaveFailureKeepsPreviousVault(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]byte("pw"), []Entry{{Identifier: "keep"}}))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	// A regular file in place of the parent directory makes the write fail.
	blocked := NewStore(filepath.Join(s.Path(), "child.frt"), AES256GCM, nil)
	err = blocked.Save([]byte("pw"), nil)
	assert.True(t, errors.Is(err, ErrIO), "got %v", err)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStoreSuiteMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.frt")
	chacha := NewStore(path, ChaCha20Poly1305, nil)
	require.NoError(t, chacha.Save([]byte("pw"), []Entry{{Identifier: "x"}}))

	got, err := chacha.Load([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Identifier: "x"}}, got)

	_, err = NewStore(path, AES256GCM, nil).Load([]byte("pw"))
	assert.True(t, errors.Is(err, ErrInvalidMasterPassword))
}

func TestStoreLogsNoSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewStore(filepath.Join(t.TempDir(), "vault.frt"), AES256GCM, zap.New(core))

	require.NoError(t, s.Save([]byte("master-secret"), []Entry{{Identifier: "id", Username: "u", Password: "entry-secret"}}))
	_, err := s.Load([]byte("master-secret"))
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, e := range logs.All() {
		line := e.Message
		for k, v := range e.ContextMap() {
			line += " " + k + "=" + toString(v)
		}
		assert.False(t, strings.Contains(line, "master-secret"), line)
		assert.False(t, strings.Contains(line, "entry-secret"), line)
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
