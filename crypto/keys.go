package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable bech32 prefix used when rendering an
// Address as text.
type AddressPrefix string

// DefaultPrefix is used whenever an Address is rendered without an explicit
// prefix. Grantor, grantee, executor, token, and domain-adapter identifiers
// all share this one namespace; the kernel attaches no meaning to prefixes
// beyond presentation.
const DefaultPrefix AddressPrefix = "flow"

// Address is a 20-byte opaque account identifier. It carries no inherent
// semantics beyond equality; every kernel component treats it as an opaque
// key, whether it names a grantor, a grantee, a trusted executor, a token,
// or a domain adapter.
type Address [20]byte

// NewAddress constructs an Address from a 20-byte slice.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != 20 {
		return a, fmt.Errorf("crypto: address must be 20 bytes, got %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

// MustNewAddress constructs an Address and panics on invalid input. Intended
// for tests and compile-time constants, never for untrusted input.
func MustNewAddress(b []byte) Address {
	a, err := NewAddress(b)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool { return a == Address{} }

// Bytes returns a copy of the address's raw bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, len(a))
	copy(out, a[:])
	return out
}

// String renders the address using the default bech32 prefix.
func (a Address) String() string {
	return a.Encode(DefaultPrefix)
}

// Encode renders the address as bech32 text under the supplied prefix.
func (a Address) Encode(prefix AddressPrefix) string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// DecodeAddress parses a bech32-encoded address string, returning the raw
// address alongside the prefix it was encoded with.
func DecodeAddress(addrStr string) (Address, AddressPrefix, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, "", fmt.Errorf("crypto: invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, "", fmt.Errorf("crypto: error converting bits: %w", err)
	}
	addr, err := NewAddress(conv)
	if err != nil {
		return Address{}, "", err
	}
	return addr, AddressPrefix(prefix), nil
}

// Hash is the 32-byte opaque identifier used for auth_hash, intent_hash,
// channel_id, policy_id, domain_id, and realm_id throughout the kernel.
type Hash [32]byte

// IsZero reports whether the hash is the zero value.
func (h Hash) IsZero() bool { return h == Hash{} }

// Bytes returns a copy of the hash's raw bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// HashFromBytes requires exactly 32 bytes; silently truncating or
// zero-padding a hash would be a correctness hazard, so callers must supply
// the right length.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != 32 {
		return h, fmt.Errorf("crypto: hash must be 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// --- Key management ---

// PrivateKey wraps an ECDSA secp256k1 private key.
type PrivateKey struct {
	*ecdsa.PrivateKey
}

// PublicKey wraps an ECDSA secp256k1 public key.
type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a new secp256k1 key pair.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the raw private key scalar.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

// PubKey derives the public key.
func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address derives the 20-byte address from the public key, using the same
// keccak256(pubkey)[12:] derivation as go-ethereum accounts.
func (k *PublicKey) Address() Address {
	return MustNewAddress(crypto.PubkeyToAddress(*k.PublicKey).Bytes())
}

// PrivateKeyFromBytes decodes a raw secp256k1 scalar.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
