package vault

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Clipboard is the system clipboard as seen by the vault.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Vault implements the entry commands. Each call loads the file, applies at
// most one change and saves it back; nothing is cached between calls.
type Vault struct {
	store     *Store
	clipboard Clipboard
	logger    *zap.Logger
}

func New(store *Store, clipboard Clipboard, logger *zap.Logger) *Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vault{store: store, clipboard: clipboard, logger: logger}
}

func (v *Vault) Store() *Store { return v.store }

// Create writes an empty vault. An existing file is only replaced when force
// is set.
func (v *Vault) Create(password []byte, force bool) error {
	exists, err := v.store.Exists()
	if err != nil {
		return err
	}
	if exists && !force {
		return errors.WithHint(ErrVaultAlreadyExists, "use --force to overwrite it")
	}
	if err := v.store.Save(password, nil); err != nil {
		return err
	}
	v.logger.Info("vault created", zap.String("path", v.store.Path()), zap.Bool("force", force))
	return nil
}

// AddRequest describes a new entry. The password comes from Generate when
// set, otherwise from the clipboard when FromClipboard is set, otherwise from
// Password.
type AddRequest struct {
	Identifier    string
	Username      string
	Password      string
	Generate      bool
	FromClipboard bool
}

// Add appends a new entry. Identifiers are not checked for uniqueness.
func (v *Vault) Add(password []byte, req AddRequest) (Entry, error) {
	entries, err := v.store.Load(password)
	if err != nil {
		return Entry{}, err
	}

	secret, err := v.resolvePassword(req)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{Identifier: req.Identifier, Username: req.Username, Password: secret}
	entries = append(entries, e)
	if err := v.store.Save(password, entries); err != nil {
		return Entry{}, err
	}

	v.logger.Info("entry added",
		zap.String("identifier", e.Identifier),
		zap.Bool("generated", req.Generate))
	return e, nil
}

func (v *Vault) resolvePassword(req AddRequest) (string, error) {
	switch {
	case req.Generate:
		return GeneratePassword(DefaultPasswordLength)
	case req.FromClipboard:
		if v.clipboard == nil {
			return "", &ClipboardError{}
		}
		s, err := v.clipboard.ReadAll()
		if err != nil {
			return "", &ClipboardError{Cause: err}
		}
		return s, nil
	default:
		return req.Password, nil
	}
}

// Remove deletes the first entry whose identifier matches.
func (v *Vault) Remove(password []byte, identifier string) error {
	entries, err := v.store.Load(password)
	if err != nil {
		return err
	}
	i := indexOf(entries, identifier)
	if i < 0 {
		return &IDNotFoundError{Identifier: identifier}
	}
	entries = append(entries[:i], entries[i+1:]...)
	if err := v.store.Save(password, entries); err != nil {
		return err
	}
	v.logger.Info("entry removed", zap.String("identifier", identifier))
	return nil
}

// View returns the first entry whose identifier matches.
func (v *Vault) View(password []byte, identifier string) (Entry, error) {
	e, err := v.find(password, identifier)
	if err != nil {
		return Entry{}, err
	}
	v.logger.Info("entry viewed", zap.String("identifier", identifier))
	return e, nil
}

// Copy puts the password of the first matching entry on the clipboard. The
// entry is returned even when the clipboard write fails.
func (v *Vault) Copy(password []byte, identifier string) (Entry, error) {
	e, err := v.find(password, identifier)
	if err != nil {
		return Entry{}, err
	}
	if v.clipboard == nil {
		return e, &ClipboardError{Password: e.Password}
	}
	if err := v.clipboard.WriteAll(e.Password); err != nil {
		return e, &ClipboardError{Password: e.Password, Cause: err}
	}
	v.logger.Info("entry copied", zap.String("identifier", identifier))
	return e, nil
}

// List returns every entry in insertion order.
func (v *Vault) List(password []byte) ([]Entry, error) {
	return v.store.Load(password)
}

func (v *Vault) find(password []byte, identifier string) (Entry, error) {
	entries, err := v.store.Load(password)
	if err != nil {
		return Entry{}, err
	}
	i := indexOf(entries, identifier)
	if i < 0 {
		return Entry{}, &IDNotFoundError{Identifier: identifier}
	}
	return entries[i], nil
}

func indexOf(entries []Entry, identifier string) int {
	for i, e := range entries {
		if e.Identifier == identifier {
			return i
		}
	}
	return -1
}
