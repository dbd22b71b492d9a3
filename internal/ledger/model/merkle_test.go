package model

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestMerkleRootEmpty(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := MerkleRoot(nil); got != want {
		t.Fatalf("MerkleRoot(nil) got = %v, want %v", got, want)
	}
}

func TestMerkleRootSingleLeaf(t *testing.T) {
	if got := MerkleRoot([]string{"leaf"}); got != "leaf" {
		t.Fatalf("MerkleRoot() got = %v, want the leaf itself", got)
	}
}

func TestMerkleRootPair(t *testing.T) {
	want := sha256hex("ab")
	if got := MerkleRoot([]string{"a", "b"}); got != want {
		t.Fatalf("MerkleRoot() got = %v, want %v", got, want)
	}
}

func TestMerkleRootOddDuplicatesLast(t *testing.T) {
	left := sha256hex("ab")
	right := sha256hex("cc")
	want := sha256hex(left + right)

	if got := MerkleRoot([]string{"a", "b", "c"}); got != want {
		t.Fatalf("MerkleRoot() got = %v, want %v", got, want)
	}
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	if MerkleRoot([]string{"a", "b"}) == MerkleRoot([]string{"b", "a"}) {
		t.Fatalf("MerkleRoot() identical for reordered leaves")
	}
}

func TestMerkleRootDoesNotMutateInput(t *testing.T) {
	leaves := []string{"a", "b", "c"}
	MerkleRoot(leaves)

	if len(leaves) != 3 || leaves[0] != "a" || leaves[1] != "b" || leaves[2] != "c" {
		t.Fatalf("MerkleRoot() mutated its input: %v", leaves)
	}
}
