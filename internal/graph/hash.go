package graph

import "hash/fnv"

// NameHash computes the FNV-1a/64 hash of an ASCII parameter or sample name,
// matching the wire format's name_hash fields (spec §6: "FNV-1a/64 of the
// ASCII parameter name, no trailing null").
func NameHash(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// Well-known parameter hashes referenced by node processors and the
// polyphonic voice router.
var (
	HashGate = NameHash("gate")
	HashTime = NameHash("time")
)
