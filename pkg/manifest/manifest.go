// Package manifest parses and validates the Neo N3 contract manifest JSON
// document, grounded on the field/wildcard shapes pinned down by neo-go's
// retrieved pkg/smartcontract/manifest test files (abi/permission/group/
// event/container tests).
package manifest

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-decompiler/pkg/util160"
)

// MaxManifestSize bounds the raw JSON document (§5 memory bounds).
const MaxManifestSize = 1 * 1024 * 1024 // 1 MiB

// Wildcard is the canonical strict-mode spelling for "anything matches".
const Wildcard = "*"

// ErrManifestValidation is returned (wrapped) for any strict-mode wildcard
// spelling violation.
var ErrManifestValidation = errors.New("manifest: strict validation failed")

// ErrTooLarge is returned when the input exceeds MaxManifestSize.
var ErrTooLarge = errors.New("manifest: document exceeds maximum size")

// Parameter describes one ABI method parameter or event field.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Method is one ABI entry.
type Method struct {
	Name       string      `json:"name"`
	Offset     int         `json:"offset"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returntype"`
	Safe       bool        `json:"safe"`
}

// Event is one ABI event declaration.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

// ABI is the contract's application binary interface.
type ABI struct {
	Methods []Method `json:"methods"`
	Events  []Event  `json:"events"`
}

// Group is a signed grouping of the contract by a third party.
type Group struct {
	PublicKey []byte `json:"pubkey"` // compressed secp256r1 point, 33 bytes
	Signature []byte `json:"signature"`
}

// ContractSelector names the callee side of a Permission: a 20-byte hash,
// a 33-byte group public key, or the wildcard "*".
type ContractSelector struct {
	IsWildcard bool
	Hash       *util160.Hash160
	GroupKey   []byte
}

// MethodsSelector names the set of permitted methods: an explicit list or
// the wildcard "*".
type MethodsSelector struct {
	IsWildcard bool
	Names      []string
}

// Permission grants a contract the right to call specific methods on a
// specific callee.
type Permission struct {
	Contract ContractSelector `json:"contract"`
	Methods  MethodsSelector  `json:"methods"`
}

// Trusts is the list of contracts this one trusts (for UI display
// purposes), or the wildcard.
type Trusts struct {
	IsWildcard bool
	Hashes     []util160.Hash160
}

// ContractManifest is the fully decoded manifest document.
type ContractManifest struct {
	Name                string            `json:"name"`
	Groups              []Group           `json:"groups"`
	Features            map[string]any    `json:"features"`
	SupportedStandards  []string          `json:"supportedstandards"`
	ABI                 ABI               `json:"abi"`
	Permissions         []Permission      `json:"permissions"`
	Trusts              Trusts            `json:"trusts"`
	Extra               json.RawMessage   `json:"extra,omitempty"`
}

// Parse decodes and, if strict is true, validates wildcard spelling
// strictly (§4.1: any wildcard spelled as anything other than "*" is
// ErrManifestValidation in strict mode).
func Parse(data []byte, strict bool) (*ContractManifest, error) {
	if len(data) > MaxManifestSize {
		return nil, ErrTooLarge
	}
	var doc rawManifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: invalid JSON: %w", err)
	}
	m, err := doc.toManifest(strict)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// rawManifest mirrors the wire JSON shape before wildcard resolution.
type rawManifest struct {
	Name               string            `json:"name"`
	Groups             []rawGroup        `json:"groups"`
	Features           map[string]any    `json:"features"`
	SupportedStandards []string          `json:"supportedstandards"`
	ABI                ABI               `json:"abi"`
	Permissions        []rawPermission   `json:"permissions"`
	Trusts             json.RawMessage   `json:"trusts"`
	Extra              json.RawMessage   `json:"extra,omitempty"`
}

type rawGroup struct {
	PublicKey string `json:"pubkey"`
	Signature string `json:"signature"`
}

type rawPermission struct {
	Contract json.RawMessage `json:"contract"`
	Methods  json.RawMessage `json:"methods"`
}

func (r *rawManifest) toManifest(strict bool) (*ContractManifest, error) {
	m := &ContractManifest{
		Name:               r.Name,
		Features:           r.Features,
		SupportedStandards: r.SupportedStandards,
		ABI:                r.ABI,
	}

	for _, g := range r.Groups {
		pub, err := decodeHex(g.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("manifest: invalid group pubkey: %w", err)
		}
		if len(pub) != 33 {
			return nil, fmt.Errorf("manifest: group pubkey must be 33 bytes, got %d", len(pub))
		}
		sig, err := decodeHex(g.Signature)
		if err != nil {
			return nil, fmt.Errorf("manifest: invalid group signature: %w", err)
		}
		if len(sig) != 64 {
			return nil, fmt.Errorf("manifest: group signature must be 64 bytes, got %d", len(sig))
		}
		m.Groups = append(m.Groups, Group{PublicKey: pub, Signature: sig})
	}

	for _, p := range r.Permissions {
		cs, err := parseContractSelector(p.Contract, strict)
		if err != nil {
			return nil, err
		}
		ms, err := parseMethodsSelector(p.Methods, strict)
		if err != nil {
			return nil, err
		}
		m.Permissions = append(m.Permissions, Permission{Contract: cs, Methods: ms})
	}

	trusts, err := parseTrusts(r.Trusts, strict)
	if err != nil {
		return nil, err
	}
	m.Trusts = trusts
	m.Extra = r.Extra
	return m, nil
}

func parseContractSelector(raw json.RawMessage, strict bool) (ContractSelector, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == Wildcard {
			return ContractSelector{IsWildcard: true}, nil
		}
		if looksLikeWildcard(s) {
			if strict {
				return ContractSelector{}, fmt.Errorf("%w: wildcard contract selector must be exactly %q, got %q", ErrManifestValidation, Wildcard, s)
			}
			return ContractSelector{IsWildcard: true}, nil
		}
		if len(s) == 66 || len(s) == 68 { // 33-byte pubkey hex, optionally "0x"-prefixed
			b, err := decodeHex(s)
			if err != nil {
				return ContractSelector{}, fmt.Errorf("manifest: invalid permission contract: %w", err)
			}
			return ContractSelector{GroupKey: b}, nil
		}
		h, err := util160.Hash160FromHex(s)
		if err != nil {
			return ContractSelector{}, fmt.Errorf("manifest: invalid permission contract hash: %w", err)
		}
		return ContractSelector{Hash: &h}, nil
	}
	return ContractSelector{}, fmt.Errorf("manifest: invalid permission contract field")
}

func parseMethodsSelector(raw json.RawMessage, strict bool) (MethodsSelector, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == Wildcard {
			return MethodsSelector{IsWildcard: true}, nil
		}
		if looksLikeWildcard(s) {
			if strict {
				return MethodsSelector{}, fmt.Errorf("%w: wildcard methods selector must be exactly %q, got %q", ErrManifestValidation, Wildcard, s)
			}
			return MethodsSelector{IsWildcard: true}, nil
		}
		return MethodsSelector{}, fmt.Errorf("manifest: invalid methods selector %q", s)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return MethodsSelector{}, fmt.Errorf("manifest: invalid methods field: %w", err)
	}
	return MethodsSelector{Names: names}, nil
}

func parseTrusts(raw json.RawMessage, strict bool) (Trusts, error) {
	if len(raw) == 0 {
		return Trusts{IsWildcard: true}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == Wildcard {
			return Trusts{IsWildcard: true}, nil
		}
		if looksLikeWildcard(s) {
			if strict {
				return Trusts{}, fmt.Errorf("%w: wildcard trusts must be exactly %q, got %q", ErrManifestValidation, Wildcard, s)
			}
			return Trusts{IsWildcard: true}, nil
		}
		return Trusts{}, fmt.Errorf("manifest: invalid trusts value %q", s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return Trusts{}, fmt.Errorf("manifest: invalid trusts field: %w", err)
	}
	t := Trusts{}
	for _, s := range list {
		h, err := util160.Hash160FromHex(s)
		if err != nil {
			return Trusts{}, fmt.Errorf("manifest: invalid trust hash: %w", err)
		}
		t.Hashes = append(t.Hashes, h)
	}
	return t, nil
}

// looksLikeWildcard matches the common mis-spellings of the wildcard token
// that strict mode must reject: variable-case, surrounded by whitespace,
// or the empty string. Anything matched here but not equal to Wildcard is
// a validation failure in strict mode.
func looksLikeWildcard(s string) bool {
	trimmed := trimSpace(s)
	return trimmed == "" || trimmed == "*" || equalFold(trimmed, "wildcard") || equalFold(trimmed, "any")
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func decodeHex(s string) ([]byte, error) {
	s = trimHexPrefix(s)
	return hex.DecodeString(s)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// MethodByOffset returns the ABI method whose declared Offset equals o
// exactly, if any; an offset inside a method's body does not match.
func (m *ContractManifest) MethodByOffset(o uint32) (Method, bool) {
	for _, meth := range m.ABI.Methods {
		if uint32(meth.Offset) == o {
			return meth, true
		}
	}
	return Method{}, false
}
