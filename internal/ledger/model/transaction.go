package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Outpoint is the composite key of a transaction output: the transaction
// that produced it and the output's position in that transaction.
type Outpoint struct {
	TxID  string
	Index uint32
}

// String renders the externally visible key form "{tx_id}:{output_index}".
// External callers rely on this exact format; internal code passes the
// struct around instead of the string.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID, o.Index)
}

// ParseOutpoint parses the "{tx_id}:{output_index}" key form.
func ParseOutpoint(s string) (Outpoint, error) {
	sep := strings.LastIndex(s, ":")
	if sep <= 0 || sep == len(s)-1 {
		return Outpoint{}, fmt.Errorf("malformed outpoint %q", s)
	}
	index, err := strconv.ParseUint(s[sep+1:], 10, 32)
	if err != nil {
		return Outpoint{}, fmt.Errorf("malformed outpoint index in %q: %w", s, err)
	}
	return Outpoint{TxID: s[:sep], Index: uint32(index)}, nil
}

// UTXO is an unspent transaction output: a discrete unit of spendable value.
// A UTXO is immutable; it either exists unconsumed in the store or has been
// permanently removed, never mutated in place.
type UTXO struct {
	TxID       string
	Index      uint32
	Amount     uint64
	Owner      Address
	LockScript string
}

// Outpoint returns the key under which the UTXO lives in the store.
func (u UTXO) Outpoint() Outpoint {
	return Outpoint{TxID: u.TxID, Index: u.Index}
}

// SpendableBy reports whether addr owns the output.
func (u UTXO) SpendableBy(addr Address) bool {
	return u.Owner == addr
}

// TxIn references a previously created UTXO by outpoint.
type TxIn struct {
	PrevTxID    string
	OutputIndex uint32
}

// Outpoint returns the referenced UTXO's key.
func (in TxIn) Outpoint() Outpoint {
	return Outpoint{TxID: in.PrevTxID, Index: in.OutputIndex}
}

// TxOut creates new value owned by a destination address.
type TxOut struct {
	Amount     uint64
	Address    Address
	LockScript string
}

// SecretLookup resolves the signing secret for a transaction input. The
// input itself is passed, not the owner address of the UTXO it references;
// callers supply a closure that produces the right secret for the right
// owner.
type SecretLookup func(in TxIn) (string, error)

// Transaction moves value by consuming UTXOs and producing new ones.
// Signatures are keyed by input index; input and output order is
// semantically significant.
type Transaction struct {
	TxID       string
	Inputs     []TxIn
	Outputs    []TxOut
	Signatures map[int][]byte
}

// Hash computes the canonical transaction hash: the digest of all input
// reference keys followed by all output "amount:address" pairs, joined by
// "|" in list order.
func (t *Transaction) Hash() string {
	parts := make([]string, 0, len(t.Inputs)+len(t.Outputs))
	for _, in := range t.Inputs {
		parts = append(parts, in.Outpoint().String())
	}
	for _, out := range t.Outputs {
		parts = append(parts, fmt.Sprintf("%d:%s", out.Amount, out.Address))
	}
	return HashBytes([]byte(strings.Join(parts, "|")))
}

// AddSignature records sig for the input at index, overwriting any prior
// entry.
func (t *Transaction) AddSignature(index int, sig []byte) {
	if t.Signatures == nil {
		t.Signatures = make(map[int][]byte, len(t.Inputs))
	}
	t.Signatures[index] = sig
}

// WellFormed reports whether every input index has a recorded signature.
func (t *Transaction) WellFormed() bool {
	for idx := range t.Inputs {
		if _, ok := t.Signatures[idx]; !ok {
			return false
		}
	}
	return true
}
