package cache

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentHash keys the cache by the compiled unit's own bytes (literal
// table plus opcode stream) rather than the original source text, so two
// different source files that compile to identical bytecode share one
// cache entry. blake2b is used instead of crypto/sha256 because the
// teacher's go.mod already carries golang.org/x/crypto and reaches for it
// for hashing rather than the stdlib primitive.
func ContentHash(marshaled []byte) string {
	sum := blake2b.Sum256(marshaled)
	return hex.EncodeToString(sum[:])
}
