package model

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ZeroHash is the previous-hash value of a block with no parent.
const ZeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// HashBytes returns the lowercase hex SHA-256 digest of data.
// Every commitment in the ledger (addresses, transactions, headers,
// merkle nodes, seals) is built from this one primitive.
func HashBytes(data []byte) string {
	return hex.EncodeToString(chainhash.HashB(data))
}

// Signature derives the shared-secret signature over a transaction hash:
// the raw SHA-256 digest of secret followed by the hex transaction hash.
func Signature(secret, txHash string) []byte {
	return chainhash.HashB([]byte(secret + txHash))
}
