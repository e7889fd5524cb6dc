// Package natives provides the static table of Neo N3 native-contract
// hashes, labels, and published method arities, used to label NEF
// method-token (CALLT) call sites that resolve to platform contracts.
// Seeded from the method names exercised throughout the teacher's
// examples/* contracts (token-sale, oracle, nft-nd-nns call NEO/GAS/
// Oracle/ContractManagement methods by these exact names).
package natives

import (
	"sort"

	"github.com/nspcc-dev/neo-decompiler/pkg/util160"
)

// Method describes one published native-contract method.
type Method struct {
	Name  string
	Arity int
}

// Contract describes one native contract.
type Contract struct {
	Hash    util160.Hash160
	Label   string
	Methods []Method
}

var table []Contract

func register(hashHex, label string, methods []Method) {
	h, err := util160.Hash160FromHex(hashHex)
	if err != nil {
		panic(err) // init-time programmer error only, never from user input
	}
	table = append(table, Contract{Hash: h, Label: label, Methods: methods})
}

func init() {
	register("0xef4073a0f2b305a38ec4050e4d3d28bc40ea63f5", "NeoToken", []Method{
		{"symbol", 0}, {"decimals", 0}, {"totalSupply", 0},
		{"balanceOf", 1}, {"transfer", 4}, {"vote", 1}, {"getCandidates", 0},
		{"getCommittee", 0}, {"getNextBlockValidators", 0}, {"unclaimedGas", 2},
		{"registerCandidate", 1}, {"unregisterCandidate", 1},
	})
	register("0xd2a4cff31913016155e38e474a2c06d08be276cf", "GasToken", []Method{
		{"symbol", 0}, {"decimals", 0}, {"totalSupply", 0},
		{"balanceOf", 1}, {"transfer", 4},
	})
	register("0x79bcd398505eb779df6e67e4be6c14cded08ac2f", "PolicyContract", []Method{
		{"getFeePerByte", 0}, {"getExecFeeFactor", 0}, {"getStoragePrice", 0},
		{"isBlocked", 1}, {"setFeePerByte", 1}, {"blockAccount", 1},
	})
	register("0x49cf4e5378ffcd4dec034fd98a174c5491e395e2", "RoleManagement", []Method{
		{"getDesignatedByRole", 2}, {"designateAsRole", 2},
	})
	register("0xfe924b7cfe89ddd271abaf7210a80a7e11178758", "OracleContract", []Method{
		{"request", 5}, {"getPrice", 0}, {"setPrice", 1}, {"finish", 0},
	})
	register("0xfffdc93764dbaddd97c48f252a53ea4643faa3fd", "LedgerContract", []Method{
		{"currentHash", 0}, {"currentIndex", 0}, {"getBlock", 1},
		{"getTransaction", 1}, {"getTransactionHeight", 1},
	})
	register("0xfffdc93764dbaddd97c48f252a53ea4643faa3fc", "ContractManagement", []Method{
		{"deploy", 2}, {"update", 2}, {"destroy", 0}, {"getContract", 1},
		{"hasMethod", 3},
	})
	register("0x597de36bddf16cf9f1a31ee709b05c74d5a04c4b", "NameService", []Method{
		{"register", 2}, {"resolve", 2}, {"setRecord", 4}, {"deleteRecord", 2},
		{"ownerOf", 1}, {"properties", 1},
	})
	sort.Slice(table, func(i, j int) bool {
		return table[i].Hash.StringLE() < table[j].Hash.StringLE()
	})
}

// Lookup resolves a native-contract hash.
func Lookup(h util160.Hash160) (Contract, bool) {
	key := h.StringLE()
	i := sort.Search(len(table), func(i int) bool { return table[i].Hash.StringLE() >= key })
	if i < len(table) && table[i].Hash.Equals(h) {
		return table[i], true
	}
	return Contract{}, false
}

// MethodLookup resolves a (contract, method name) pair to its published
// arity; ok is false when either the contract or the method is unknown.
func MethodLookup(h util160.Hash160, name string) (Method, bool) {
	c, ok := Lookup(h)
	if !ok {
		return Method{}, false
	}
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}
