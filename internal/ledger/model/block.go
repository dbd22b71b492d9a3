// Package model defines the ledger's core entities: addresses, outputs,
// transactions and blocks, together with their canonical hash forms. The
// hash forms are consensus-critical; any change to them forks the chain.
package model

import (
	"fmt"
)

// HeaderVersion is the block header version stamped on newly built blocks.
const HeaderVersion uint32 = 1

// BlockHeader carries the chain linkage and the consensus fields of a
// block. Nonce is written by the sealer; Validator stays empty on
// proof-of-work chains.
type BlockHeader struct {
	Version    uint32
	PrevHash   string
	MerkleRoot string
	Timestamp  int64
	Nonce      uint64
	Difficulty uint32
	Validator  string
}

// Hash computes the canonical header hash: the digest of the seven header
// fields joined by ":" in declaration order. An absent validator
// contributes the empty string.
func (h *BlockHeader) Hash() string {
	payload := fmt.Sprintf("%d:%s:%s:%d:%d:%d:%s",
		h.Version, h.PrevHash, h.MerkleRoot, h.Timestamp, h.Nonce, h.Difficulty, h.Validator)
	return HashBytes([]byte(payload))
}

// Block is a header plus the ordered transactions it commits to.
type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
}

// AddTransaction appends tx to the block body. The merkle root is not
// recomputed; call ComputeMerkleRoot once the body is final.
func (b *Block) AddTransaction(tx *Transaction) {
	b.Transactions = append(b.Transactions, tx)
}

// ComputeMerkleRoot recomputes the root over the block's transaction
// hashes in body order and stores it in the header.
func (b *Block) ComputeMerkleRoot() string {
	hashes := make([]string, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		hashes = append(hashes, tx.Hash())
	}
	root := MerkleRoot(hashes)
	b.Header.MerkleRoot = root
	return root
}

// Hash returns the block's identity, the hash of its header.
func (b *Block) Hash() string {
	return b.Header.Hash()
}

// Verify reports whether the stored merkle root matches the root recomputed
// from the block body.
func (b *Block) Verify() bool {
	hashes := make([]string, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		hashes = append(hashes, tx.Hash())
	}
	return b.Header.MerkleRoot == MerkleRoot(hashes)
}
