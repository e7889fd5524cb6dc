// Package syscalls provides the static table mapping SYSCALL operand
// hashes to interop service metadata. The seed list of service names is
// taken from the interop surface packages of the teacher repo
// (interop/runtime, interop/storage, interop/contract, interop/iterator,
// interop/crypto); hashes of services outside this table resolve to
// ok=false.
package syscalls

import (
	"crypto/sha256"
	"sort"
)

// Info describes one interop service.
type Info struct {
	Hash          uint32
	Name          string
	CallFlags     string // human-readable required call-flag set
	ReturnsValue  bool
	ParamCount    int
}

// Hash computes the 32-bit interop hash the way the Neo N3 VM does: the
// first 4 little-endian bytes of SHA256(name).
func Hash(name string) uint32 {
	sum := sha256.Sum256([]byte(name))
	return uint32(sum[0]) | uint32(sum[1])<<8 | uint32(sum[2])<<16 | uint32(sum[3])<<24
}

func entry(name string, returnsValue bool, paramCount int, flags string) Info {
	return Info{Hash: Hash(name), Name: name, ReturnsValue: returnsValue, ParamCount: paramCount, CallFlags: flags}
}

// table is sorted by Hash at init time so Lookup can binary-search it.
var table = []Info{
	entry("System.Runtime.Platform", true, 0, "None"),
	entry("System.Runtime.GetTrigger", true, 0, "None"),
	entry("System.Runtime.GetTime", true, 0, "ReadStates"),
	entry("System.Runtime.GetScriptContainer", true, 0, "None"),
	entry("System.Runtime.GetExecutingScriptHash", true, 0, "None"),
	entry("System.Runtime.GetCallingScriptHash", true, 0, "None"),
	entry("System.Runtime.GetEntryScriptHash", true, 0, "None"),
	entry("System.Runtime.CheckWitness", true, 1, "None"),
	entry("System.Runtime.GetInvocationCounter", true, 0, "None"),
	entry("System.Runtime.GetRandom", true, 0, "None"),
	entry("System.Runtime.Log", false, 1, "AllowNotify"),
	entry("System.Runtime.Notify", false, 2, "AllowNotify"),
	entry("System.Runtime.GetNotifications", true, 1, "None"),
	entry("System.Runtime.GasLeft", true, 0, "None"),
	entry("System.Runtime.BurnGas", false, 1, "None"),
	entry("System.Runtime.CurrentSigners", true, 0, "None"),
	entry("System.Crypto.CheckSig", true, 2, "None"),
	entry("System.Crypto.CheckMultisig", true, 2, "None"),
	entry("System.Contract.Call", true, 4, "AllowCall"),
	entry("System.Contract.CallNative", false, 1, "None"),
	entry("System.Contract.GetCallFlags", true, 0, "None"),
	entry("System.Contract.CreateStandardAccount", true, 1, "None"),
	entry("System.Contract.CreateMultisigAccount", true, 2, "None"),
	entry("System.Contract.NativeOnPersist", false, 0, "States"),
	entry("System.Contract.NativePostPersist", false, 0, "States"),
	entry("System.Iterator.Next", true, 1, "None"),
	entry("System.Iterator.Value", true, 1, "None"),
	entry("System.Storage.GetContext", true, 0, "ReadStates"),
	entry("System.Storage.GetReadOnlyContext", true, 0, "ReadStates"),
	entry("System.Storage.AsReadOnly", true, 1, "ReadStates"),
	entry("System.Storage.Get", true, 2, "ReadStates"),
	entry("System.Storage.Find", true, 3, "ReadStates"),
	entry("System.Storage.Put", false, 3, "WriteStates"),
	entry("System.Storage.Delete", false, 2, "WriteStates"),
}

func init() {
	sort.Slice(table, func(i, j int) bool { return table[i].Hash < table[j].Hash })
}

// Lookup resolves a 32-bit interop hash, returning ok=false for unknown
// hashes.
func Lookup(hash uint32) (Info, bool) {
	i := sort.Search(len(table), func(i int) bool { return table[i].Hash >= hash })
	if i < len(table) && table[i].Hash == hash {
		return table[i], true
	}
	return Info{}, false
}

// ByName resolves a syscall by its dotted service name, used by tests and
// by callers constructing synthetic scripts.
func ByName(name string) (Info, bool) {
	return Lookup(Hash(name))
}
