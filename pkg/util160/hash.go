// Package util160 provides the fixed-size hash value types used across the
// NEF and manifest formats (contract and group hashes).
package util160

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Size is the length in bytes of a Hash160 value.
const Size = 20

// Hash160 is a 160-bit value stored and compared in little-endian byte
// order internally, but rendered in big-endian ("0x"-prefixed) form in its
// textual representations, matching Neo's on-chain convention.
type Hash160 [Size]byte

// Hash160FromBytes creates a Hash160 from a little-endian byte slice.
func Hash160FromBytes(b []byte) (h Hash160, err error) {
	if len(b) != Size {
		return h, fmt.Errorf("expected %d bytes, got %d", Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Hash160FromHex parses a "0x"-prefixed or bare big-endian hex string.
func Hash160FromHex(s string) (h Hash160, err error) {
	s = trimHexPrefix(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash160 hex: %w", err)
	}
	if len(b) != Size {
		return h, fmt.Errorf("expected %d bytes, got %d", Size, len(b))
	}
	// Hex strings are conventionally big-endian; reverse into our
	// little-endian internal storage.
	for i, j := 0, len(b)-1; i < len(b); i, j = i+1, j-1 {
		h[i] = b[j]
	}
	return h, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Bytes returns the little-endian byte representation.
func (h Hash160) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

// StringLE returns the hex string in little-endian (storage) order, no "0x".
func (h Hash160) StringLE() string {
	return hex.EncodeToString(h[:])
}

// StringBE returns the canonical "0x"-prefixed big-endian hex string.
func (h Hash160) StringBE() string {
	rev := make([]byte, Size)
	for i, j := 0, Size-1; i < Size; i, j = i+1, j-1 {
		rev[i] = h[j]
	}
	return "0x" + hex.EncodeToString(rev)
}

// IsZero reports whether this is the all-zero hash.
func (h Hash160) IsZero() bool {
	return h == Hash160{}
}

// Equals reports byte equality.
func (h Hash160) Equals(o Hash160) bool {
	return bytes.Equal(h[:], o[:])
}

// MarshalJSON renders the canonical "0x..." big-endian form.
func (h Hash160) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.StringBE())
}

// UnmarshalJSON accepts "0x..." or bare hex, big-endian.
func (h *Hash160) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := Hash160FromHex(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ErrInvalidLength describes input of the wrong size. Hash160FromBytes and
// Hash160FromHex do not return or wrap it: they report a wrong length with
// their own "expected N bytes, got M" error.
var ErrInvalidLength = errors.New("invalid length")
