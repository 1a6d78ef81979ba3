package crypto

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	flowerrors "flowkernel/core/errors"
)

// secp256k1NHalf is half the curve order. A signature with s above this
// value is rejected: every (r, s) digest has an equally valid (r, N-s)
// counterpart, and without this check a grantor could replay the "other"
// signature for the same authorization and have it treated as distinct.
var secp256k1NHalf = new(big.Int).Rsh(ethcrypto.S256().Params().N, 1)

// MagicValueAccepted is returned by a CodeVerifier to signal that the
// presented signature is valid for the presented digest, mirroring
// EIP-1271's magic return value convention.
const MagicValueAccepted = "flowkernel-sig-ok"

// CodeVerifier is implemented by a code-bearing account (e.g. a multisig or
// policy contract standing in for a grantor) to validate a signature on its
// own terms instead of via a single ECDSA key.
type CodeVerifier interface {
	// IsCodeAccount reports whether addr is a code-bearing account this
	// verifier knows how to delegate to. VerifySignature only calls Verify
	// when this returns true; key-holder accounts fall through to ECDSA
	// recovery.
	IsCodeAccount(addr Address) bool
	// Verify validates sig against digest on behalf of addr, returning
	// MagicValueAccepted on success.
	Verify(addr Address, digest Hash, sig []byte) (magic string, err error)
}

// VerifySignature implements the dual-path signature check: a code-bearing
// grantor delegates to verifier, a key-holder grantor is checked by ECDSA
// recovery against digest with low-s enforcement. Returns
// flowerrors.ErrBadSignature (wrapped) on any failure.
func VerifySignature(digest Hash, sig []byte, grantor Address, verifier CodeVerifier) error {
	if verifier != nil && verifier.IsCodeAccount(grantor) {
		magic, err := verifier.Verify(grantor, digest, sig)
		if err != nil {
			return flowerrors.ErrBadSignature
		}
		if magic != MagicValueAccepted {
			return flowerrors.ErrBadSignature
		}
		return nil
	}
	return verifyECDSA(digest, sig, grantor)
}

func verifyECDSA(digest Hash, sig []byte, grantor Address) error {
	if len(sig) != 65 {
		return flowerrors.ErrBadSignature
	}
	s := new(big.Int).SetBytes(sig[32:64])
	if s.Cmp(secp256k1NHalf) > 0 {
		return flowerrors.ErrBadSignature
	}

	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return flowerrors.ErrBadSignature
	}
	recovered := MustNewAddress(ethcrypto.PubkeyToAddress(*pub).Bytes())
	if recovered != grantor {
		return flowerrors.ErrBadSignature
	}
	return nil
}

// Sign produces a 65-byte [R || S || V] signature over digest using key,
// normalizing s to the lower half of the curve order so the signature it
// produces always passes verifyECDSA's low-s check.
func Sign(digest Hash, key *PrivateKey) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest[:], key.PrivateKey)
	if err != nil {
		return nil, err
	}
	s := new(big.Int).SetBytes(sig[32:64])
	if s.Cmp(secp256k1NHalf) > 0 {
		s.Sub(ethcrypto.S256().Params().N, s)
		var sBuf [32]byte
		s.FillBytes(sBuf[:])
		copy(sig[32:64], sBuf[:])
		sig[64] ^= 0x01
	}
	return sig, nil
}

// NewKeyVerifier returns a CodeVerifier that treats every address as a
// key-holder account, i.e. IsCodeAccount always returns false. PullExecutor
// and IntentRegistry use it as their default verifier, so callers that only
// need ECDSA verification don't have to construct a real code-account
// registry.
func NewKeyVerifier() CodeVerifier { return keyOnlyVerifier{} }

type keyOnlyVerifier struct{}

func (keyOnlyVerifier) IsCodeAccount(Address) bool { return false }

func (keyOnlyVerifier) Verify(Address, Hash, []byte) (string, error) {
	return "", flowerrors.ErrBadSignature
}
