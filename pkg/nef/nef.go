// Package nef implements a bit-exact parser/encoder for the Neo N3
// Executable Format (NEF) container: the compiled-contract envelope
// wrapping a raw VM script, field-for-field grounded on the wire layout
// pinned down by neo-go's pkg/smartcontract/nef test suite (Header/Magic/
// Compiler/Source/Tokens/Script/Checksum, FileFromBytes/Bytes,
// CalculateChecksum).
package nef

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nspcc-dev/neo-decompiler/pkg/bio"
	"github.com/nspcc-dev/neo-decompiler/pkg/callflag"
	"github.com/nspcc-dev/neo-decompiler/pkg/util160"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // only FIPS-deprecated hash matching Neo's on-chain script-hash algorithm.
)

// Magic is the required value of Header.Magic: the little-endian
// interpretation of the ASCII bytes "NEF3".
const Magic uint32 = 0x3346454E

// MaxScriptLength bounds the Script field (§5 memory bounds).
const MaxScriptLength = 10 * 1024 * 1024 // 10 MiB

// MaxCompilerLength is the fixed width of the zero-padded Compiler field.
const MaxCompilerLength = 64

// MaxSourceLength bounds the variable-length Source URL field.
const MaxSourceLength = 256

// MaxMethodNameLength bounds MethodToken.Method.
const MaxMethodNameLength = 32

// Errors surfaced by FileFromBytes and Bytes; all are fatal for the
// affected file.
var (
	ErrInvalidMagic      = errors.New("nef: invalid magic")
	ErrInvalidReserved   = errors.New("nef: invalid reserved bytes")
	ErrCompilerTooLong   = errors.New("nef: compiler field too long")
	ErrSourceTooLong     = errors.New("nef: source field too long")
	ErrMethodNameTooLong = errors.New("nef: method token name too long")
	ErrEmptyScript       = errors.New("nef: script is empty")
	ErrScriptTooLong     = errors.New("nef: script exceeds maximum length")
	ErrReservedMethod    = errors.New("nef: method token name is reserved")
)

// ChecksumError reports a checksum mismatch between the parsed prefix and
// the trailing 4-byte field.
type ChecksumError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("nef: checksum mismatch: expected %08x, got %08x", e.Expected, e.Actual)
}

// Header is the fixed-shape prefix of a NEF file, everything before the
// method-token list.
type Header struct {
	Magic    uint32
	Compiler string
	Source   string
	// Reserved1/Reserved2 must decode as zero; any other value is
	// ErrInvalidReserved.
}

// MethodToken references an external method by index, resolved from a
// CALLT operand.
type MethodToken struct {
	Hash       util160.Hash160
	Method     string
	ParamCount uint16
	HasReturn  bool
	CallFlag   callflag.CallFlag
}

// File is a fully decoded NEF container.
type File struct {
	Header   Header
	Tokens   []MethodToken
	Script   []byte
	Checksum uint32
}

// CalculateChecksum reserializes everything but the Checksum field and
// returns the first 4 little-endian bytes of SHA256(SHA256(prefix)).
func (f *File) CalculateChecksum() uint32 {
	w := bio.NewWriter()
	f.encodePrefix(w)
	h1 := sha256.Sum256(w.Bytes())
	h2 := sha256.Sum256(h1[:])
	return uint32(h2[0]) | uint32(h2[1])<<8 | uint32(h2[2])<<16 | uint32(h2[3])<<24
}

func (f *File) encodePrefix(w *bio.Writer) {
	w.WriteU32LE(f.Header.Magic)
	w.WriteFixedString(f.Header.Compiler, MaxCompilerLength)
	w.WriteVarString(f.Header.Source)
	w.WriteB(0) // reserved1
	w.WriteVarUint(uint64(len(f.Tokens)))
	for _, t := range f.Tokens {
		w.WriteBytes(t.Hash.Bytes())
		w.WriteVarString(t.Method)
		w.WriteU16LE(t.ParamCount)
		w.WriteBool(t.HasReturn)
		w.WriteB(byte(t.CallFlag))
	}
	w.WriteU16LE(0) // reserved2
	w.WriteVarBytes(f.Script)
}

// Bytes serializes f including its checksum.
func (f *File) Bytes() ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	w := bio.NewWriter()
	f.encodePrefix(w)
	w.WriteU32LE(f.Checksum)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

func (f *File) validate() error {
	if f.Header.Magic != Magic {
		return ErrInvalidMagic
	}
	if len(f.Header.Compiler) > MaxCompilerLength {
		return ErrCompilerTooLong
	}
	if len(f.Header.Source) > MaxSourceLength {
		return ErrSourceTooLong
	}
	if len(f.Script) == 0 {
		return ErrEmptyScript
	}
	if len(f.Script) > MaxScriptLength {
		return ErrScriptTooLong
	}
	for _, t := range f.Tokens {
		if len(t.Method) > MaxMethodNameLength {
			return ErrMethodNameTooLong
		}
		if len(t.Method) > 0 && t.Method[0] == '_' {
			return ErrReservedMethod
		}
	}
	return nil
}

// FileFromBytes parses and validates a NEF container, verifying the
// checksum. Any structural violation is a fatal, typed error.
func FileFromBytes(b []byte) (File, error) {
	r := bio.NewReaderFromBuf(b)
	var f File

	f.Header.Magic = r.ReadU32LE()
	f.Header.Compiler = r.ReadFixedString(MaxCompilerLength)
	f.Header.Source = r.ReadVarString(MaxSourceLength)
	reserved1 := r.ReadB()
	tokenCount := r.ReadVarUint()
	if r.Err != nil {
		return f, r.Err
	}
	if f.Header.Magic != Magic {
		return f, ErrInvalidMagic
	}
	if reserved1 != 0 {
		return f, ErrInvalidReserved
	}
	f.Tokens = make([]MethodToken, 0, tokenCount)
	for i := uint64(0); i < tokenCount; i++ {
		var t MethodToken
		hashBytes := r.ReadBytes(util160.Size)
		if r.Err != nil {
			return f, r.Err
		}
		h, err := util160.Hash160FromBytes(hashBytes)
		if err != nil {
			return f, err
		}
		t.Hash = h
		t.Method = r.ReadVarString(MaxMethodNameLength)
		t.ParamCount = r.ReadU16LE()
		t.HasReturn = r.ReadBool()
		t.CallFlag = callflag.CallFlag(r.ReadB())
		if r.Err != nil {
			return f, r.Err
		}
		if len(t.Method) > 0 && t.Method[0] == '_' {
			return f, ErrReservedMethod
		}
		f.Tokens = append(f.Tokens, t)
	}
	reserved2 := r.ReadU16LE()
	if reserved2 != 0 {
		return f, ErrInvalidReserved
	}
	f.Script = r.ReadVarBytes(MaxScriptLength)
	if r.Err != nil {
		return f, r.Err
	}
	if len(f.Script) == 0 {
		return f, ErrEmptyScript
	}
	f.Checksum = r.ReadU32LE()
	if r.Err != nil {
		return f, r.Err
	}

	want := f.CalculateChecksum()
	if want != f.Checksum {
		return f, &ChecksumError{Expected: want, Actual: f.Checksum}
	}
	return f, nil
}

// ScriptHash returns RIPEMD160(SHA256(script)), the canonical Neo contract
// hash.
func ScriptHash(script []byte) (util160.Hash160, error) {
	sha := sha256.Sum256(script)
	ripemd := ripemd160.New()
	if _, err := ripemd.Write(sha[:]); err != nil {
		return util160.Hash160{}, err
	}
	return util160.Hash160FromBytes(ripemd.Sum(nil))
}

// jsonFile mirrors File's on-the-wire JSON shape (tokens array, base64
// script, decimal checksum) per the teacher's retrieved round-trip test.
type jsonFile struct {
	Magic    uint32            `json:"magic"`
	Compiler string            `json:"compiler"`
	Source   string            `json:"source,omitempty"`
	Tokens   []jsonMethodToken `json:"tokens"`
	Script   string            `json:"script"`
	Checksum uint32            `json:"checksum"`
}

type jsonMethodToken struct {
	Hash       string `json:"hash"`
	Method     string `json:"method"`
	ParamCount uint16 `json:"paramcount"`
	HasReturn  bool   `json:"hasreturnvalue"`
	CallFlag   int64  `json:"callflags"`
}

// MarshalJSON renders the canonical JSON representation.
func (f File) MarshalJSON() ([]byte, error) {
	jf := jsonFile{
		Magic:    f.Header.Magic,
		Compiler: f.Header.Compiler,
		Source:   f.Header.Source,
		Script:   base64.StdEncoding.EncodeToString(f.Script),
		Checksum: f.Checksum,
	}
	for _, t := range f.Tokens {
		jf.Tokens = append(jf.Tokens, jsonMethodToken{
			Hash:       t.Hash.StringBE(),
			Method:     t.Method,
			ParamCount: t.ParamCount,
			HasReturn:  t.HasReturn,
			CallFlag:   int64(t.CallFlag),
		})
	}
	return json.Marshal(jf)
}

// UnmarshalJSON parses the canonical JSON representation.
func (f *File) UnmarshalJSON(data []byte) error {
	var jf jsonFile
	if err := json.Unmarshal(data, &jf); err != nil {
		return err
	}
	f.Header.Magic = jf.Magic
	f.Header.Compiler = jf.Compiler
	f.Header.Source = jf.Source
	f.Checksum = jf.Checksum
	script, err := base64.StdEncoding.DecodeString(jf.Script)
	if err != nil {
		return fmt.Errorf("nef: invalid base64 script: %w", err)
	}
	f.Script = script
	f.Tokens = nil
	for _, jt := range jf.Tokens {
		h, err := util160.Hash160FromHex(jt.Hash)
		if err != nil {
			return err
		}
		f.Tokens = append(f.Tokens, MethodToken{
			Hash:       h,
			Method:     jt.Method,
			ParamCount: jt.ParamCount,
			HasReturn:  jt.HasReturn,
			CallFlag:   callflag.CallFlag(jt.CallFlag),
		})
	}
	return nil
}

// FormatChecksumHex renders a checksum the way strconv.FormatUint(v, 16)
// would, so callers don't need to import strconv solely for this.
func FormatChecksumHex(v uint32) string {
	return strconv.FormatUint(uint64(v), 16)
}
