package vault

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// plaintextVault is the JSON envelope sealed inside the vault file. The field
// names are part of the file format.
type plaintextVault struct {
	Check   string  `json:"_pwcheck"`
	Entries []Entry `json:"entries"`
}

func encodeContents(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	pt, err := json.Marshal(plaintextVault{Check: IntegrityMarker, Entries: entries})
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "encode vault contents"), ErrSerialization)
	}
	return pt, nil
}

// decodeContents parses the envelope strictly: keys match exactly, every
// field must be present and none may be null. Unknown keys are ignored.
func decodeContents(pt []byte) ([]Entry, error) {
	if !utf8.Valid(pt) {
		return nil, ErrCorruptedVault
	}
	var (
		check   string
		entries []Entry
	)
	err := func() error {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(pt, &obj); err != nil {
			return err
		}
		if obj == nil {
			return errors.New("envelope is null")
		}
		if err := field(obj, "_pwcheck", &check); err != nil {
			return err
		}
		var raw []map[string]json.RawMessage
		if err := field(obj, "entries", &raw); err != nil {
			return err
		}
		entries = make([]Entry, len(raw))
		for i, e := range raw {
			if e == nil {
				return errors.Newf("entry %d is null", i)
			}
			for key, dst := range map[string]*string{
				"identifier": &entries[i].Identifier,
				"username":   &entries[i].Username,
				"password":   &entries[i].Password,
			} {
				if err := field(e, key, dst); err != nil {
					return errors.Wrapf(err, "entry %d", i)
				}
			}
		}
		return nil
	}()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode vault contents"), ErrCorruptedVault)
	}
	if check != IntegrityMarker {
		return nil, ErrInvalidMasterPassword
	}
	return entries, nil
}

// field decodes obj[key] into dst. The key is matched case-sensitively.
func field(obj map[string]json.RawMessage, key string, dst any) error {
	raw, ok := obj[key]
	if !ok {
		return errors.Newf("missing field %q", key)
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.Newf("field %q is null", key)
	}
	return errors.Wrapf(json.Unmarshal(raw, dst), "field %q", key)
}
