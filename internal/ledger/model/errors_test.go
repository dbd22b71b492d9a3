package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInsufficientFundsErrorMessage(t *testing.T) {
	err := &InsufficientFundsError{Address: "addr", Required: 100, Available: 40}

	msg := err.Error()
	for _, part := range []string{"addr", "100", "40"} {
		if !strings.Contains(msg, part) {
			t.Errorf("InsufficientFundsError.Error() = %q, missing %q", msg, part)
		}
	}
}

func TestInvalidTransactionErrorUnwrap(t *testing.T) {
	tx := &Transaction{TxID: "deadbeef"}
	cause := &DoubleSpendError{UTXO: UTXO{TxID: "aa", Index: 0, Amount: 100}}
	err := fmt.Errorf("submit failed: %w", &InvalidTransactionError{Tx: tx, Err: cause})

	var invalid *InvalidTransactionError
	if !errors.As(err, &invalid) {
		t.Fatalf("errors.As() failed to find InvalidTransactionError in %v", err)
	}
	if invalid.Tx != tx {
		t.Fatalf("InvalidTransactionError carries wrong transaction")
	}

	var doubleSpend *DoubleSpendError
	if !errors.As(err, &doubleSpend) {
		t.Fatalf("errors.As() failed to unwrap DoubleSpendError from %v", err)
	}
	if doubleSpend.UTXO.Outpoint().String() != "aa:0" {
		t.Fatalf("DoubleSpendError outpoint = %v, want aa:0", doubleSpend.UTXO.Outpoint())
	}
}

func TestInvalidSignatureErrorMessage(t *testing.T) {
	err := &InvalidSignatureError{TxID: "deadbeef", InputIndex: 2}

	msg := err.Error()
	if !strings.Contains(msg, "deadbeef") || !strings.Contains(msg, "2") {
		t.Fatalf("InvalidSignatureError.Error() = %q, missing tx id or input index", msg)
	}
}
