package types

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the byte length of every account and program identifier.
const AddressLength = 20

// Address is a 20-byte account or program identifier. User addresses are
// derived from a secp256k1 public key; program and system addresses are
// opaque byte strings assigned at deploy time.
type Address [AddressLength]byte

// AddressFromBytes copies b into an Address. The slice must be exactly 20
// bytes long.
func AddressFromBytes(b []byte) (Address, error) {
	var addr Address
	if len(b) != AddressLength {
		return addr, fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// AddressFromPubKey derives the address for a secp256k1 public key: the last
// 20 bytes of the Keccak-256 hash of the uncompressed point, excluding the
// 0x04 prefix byte. Changing this derivation is a breaking protocol change.
func AddressFromPubKey(pub *ecdsa.PublicKey) Address {
	raw := ethcrypto.FromECDSAPub(pub)
	sum := ethcrypto.Keccak256(raw[1:])

	var addr Address
	copy(addr[:], sum[len(sum)-AddressLength:])
	return addr
}

// HexToAddress parses a 0x-prefixed or bare hex string into an Address.
func HexToAddress(s string) (Address, error) {
	trimmed := s
	if len(trimmed) >= 2 && trimmed[0] == '0' && (trimmed[1] == 'x' || trimmed[1] == 'X') {
		trimmed = trimmed[2:]
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address hex: %w", err)
	}
	return AddressFromBytes(raw)
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Hex renders the address as a 0x-prefixed lowercase hex string.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// Compare orders addresses lexicographically by their raw bytes.
func (a Address) Compare(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// IsZero reports whether the address is the all-zero identifier.
func (a Address) IsZero() bool {
	return a == Address{}
}
