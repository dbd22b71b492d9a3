package model

// Address identifies an owner of value. It holds the hex SHA-256 hash of the
// owner's public key and is compared by value.
type Address string

// AddressFromPublicKey derives an address from a public key string.
func AddressFromPublicKey(publicKey string) Address {
	return Address(HashBytes([]byte(publicKey)))
}

func (a Address) String() string {
	return string(a)
}
