package model

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestHashBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "empty input",
			data: nil,
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "known vector",
			data: []byte("abc"),
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HashBytes(tt.data); got != tt.want {
				t.Errorf("HashBytes() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	secret := "wallet-secret"
	txHash := HashBytes([]byte("payload"))

	want := sha256.Sum256([]byte(secret + txHash))
	got := Signature(secret, txHash)

	if hex.EncodeToString(got) != hex.EncodeToString(want[:]) {
		t.Fatalf("Signature() got = %x, want %x", got, want)
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	pub := "04deadbeef"

	want := Address(HashBytes([]byte(pub)))
	if got := AddressFromPublicKey(pub); got != want {
		t.Fatalf("AddressFromPublicKey() got = %v, want %v", got, want)
	}
	if len(AddressFromPublicKey(pub)) != 64 {
		t.Fatalf("AddressFromPublicKey() length = %d, want 64", len(AddressFromPublicKey(pub)))
	}
}

func TestZeroHashLength(t *testing.T) {
	if len(ZeroHash) != 64 {
		t.Fatalf("ZeroHash length = %d, want 64", len(ZeroHash))
	}
}
