package vault

// On-disk layout, no magic and no version:
//
//	[0:32)   salt
//	[32:44)  nonce
//	[44:)    ciphertext || 16-byte tag

func encodeFile(h fileHeader, ct []byte) []byte {
	raw := make([]byte, 0, len(h.Salt)+len(h.Nonce)+len(ct))
	raw = append(raw, h.Salt...)
	raw = append(raw, h.Nonce...)
	return append(raw, ct...)
}

// decodeFile splits raw into its header and ciphertext. Beyond the length
// check nothing is validated here; AEAD authentication does the rest.
func decodeFile(raw []byte) (fileHeader, []byte, error) {
	var h fileHeader
	if len(raw) < MinFileLen {
		return h, nil, ErrCorruptedVault
	}
	h.Salt = raw[:SaltLen]
	h.Nonce = raw[SaltLen : SaltLen+NonceLen]
	return h, raw[SaltLen+NonceLen:], nil
}
