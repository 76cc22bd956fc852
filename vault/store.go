package vault

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const filePerm = 0600

// Store reads and writes a single vault file. It keeps no entries between
// calls: every Load reads the whole file and every Save rewrites it under a
// fresh salt and nonce.
//
// Store does not lock the file. Two processes that load, mutate and save the
// same path concurrently will lose one of the updates.
type Store struct {
	path   string
	suite  Suite
	logger *zap.Logger
}

func NewStore(path string, suite Suite, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if suite == "" {
		suite = AES256GCM
	}
	return &Store{path: path, suite: suite, logger: logger}
}

func (s *Store) Path() string { return s.path }

// Exists reports whether something is present at the vault path.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, ioError(err, "stat vault")
	}
}

// Load decrypts the vault and returns its entries in file order.
func (s *Store) Load(password []byte) ([]Entry, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithHint(ErrVaultNotFound, "create one first with `frt create`")
	}
	if err != nil {
		return nil, ioError(err, "read vault")
	}

	header, ct, err := decodeFile(raw)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(password, header.Salt)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	pt, err := AEADOpen(s.suite, key.Bytes(), header.Nonce, ct)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) {
			return nil, ErrInvalidMasterPassword
		}
		return nil, errors.Mark(errors.Wrap(err, "open vault"), ErrDecryptionFailed)
	}
	defer memguard.WipeBytes(pt)

	entries, err := decodeContents(pt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("vault opened",
		zap.String("path", s.path),
		zap.Int("entries", len(entries)),
		zap.Int("size", len(raw)))
	return entries, nil
}

// Save seals entries and replaces the vault file. The new file is written
// next to the old one and renamed over it, so a failed save leaves the
// previous vault intact. A symlinked vault path is written through: the
// link is kept and the file it points at is replaced.
func (s *Store) Save(password []byte, entries []Entry) error {
	pt, err := encodeContents(entries)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(pt)

	salt, err := randBytes(SaltLen)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "generate salt"), ErrEncryptionFailed)
	}

	key, err := DeriveKey(password, salt)
	if err != nil {
		return err
	}
	defer key.Destroy()

	nonce, ct, err := AEADSeal(s.suite, key.Bytes(), pt)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "seal vault"), ErrEncryptionFailed)
	}

	raw := encodeFile(fileHeader{Salt: salt, Nonce: nonce}, ct)
	target, err := s.target()
	if err != nil {
		return ioError(err, "resolve vault path")
	}
	if err := atomicWriteFile(target, raw, filePerm); err != nil {
		return ioError(err, "write vault")
	}

	s.logger.Info("vault saved",
		zap.String("path", s.path),
		zap.Int("entries", len(entries)),
		zap.Int("size", len(raw)))
	return nil
}

// target returns the file a save should replace. Symlinks are followed,
// including a dangling final link whose destination does not exist yet.
func (s *Store) target() (string, error) {
	resolved, err := filepath.EvalSymlinks(s.path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	fi, lerr := os.Lstat(s.path)
	if lerr != nil || fi.Mode()&fs.ModeSymlink == 0 {
		return s.path, nil
	}
	dest, err := os.Readlink(s.path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(s.path), dest)
	}
	return dest, nil
}
