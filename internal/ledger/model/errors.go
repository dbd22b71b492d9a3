package model

import "fmt"

// InsufficientFundsError reports that an address does not own enough
// unspent value to cover a requested amount.
type InsufficientFundsError struct {
	Address   Address
	Required  uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: required %d, available %d", e.Address, e.Required, e.Available)
}

// DoubleSpendError reports that a transaction input references an output
// that is already claimed: absent from the unspent set, or named by more
// than one pending input. UTXO carries what is known about the output; for
// an absent key only its TxID and Index are set.
type DoubleSpendError struct {
	UTXO UTXO
}

func (e *DoubleSpendError) Error() string {
	return fmt.Sprintf("double spend detected on output %s", e.UTXO.Outpoint())
}

// InvalidSignatureError reports that the signature on the input at
// InputIndex does not verify against the referenced output's owner.
type InvalidSignatureError struct {
	TxID       string
	InputIndex int
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("invalid signature on input %d of transaction %s", e.InputIndex, e.TxID)
}

// InvalidTransactionError wraps any failure that makes a transaction
// unacceptable to the ledger while keeping the offending transaction
// attached for callers.
type InvalidTransactionError struct {
	Tx  *Transaction
	Err error
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("invalid transaction %s: %v", e.Tx.TxID, e.Err)
}

func (e *InvalidTransactionError) Unwrap() error {
	return e.Err
}
