package crypto

import (
	"encoding/binary"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// typedDataPrefix is prepended to every digest this package produces, the
// same role \x19Ethereum Signed Message-style prefixes play: it stops a
// signature minted for one message format from being replayed as another.
const typedDataPrefix = "\x19flowkernel typed data\x01"

// DomainDescriptor computes D = hash(name, version, host_id,
// verifying_instance_address), binding every signature produced under it to
// one protocol name, one protocol version, one host, and one deployed
// instance. Changing any of the four invalidates every signature minted
// under the old domain.
func DomainDescriptor(name, version string, hostID uint64, verifyingInstance Address) Hash {
	var hostIDBuf [8]byte
	binary.BigEndian.PutUint64(hostIDBuf[:], hostID)

	buf := make([]byte, 0, len(name)+len(version)+8+20)
	buf = append(buf, []byte(name)...)
	buf = append(buf, []byte(version)...)
	buf = append(buf, hostIDBuf[:]...)
	buf = append(buf, verifyingInstance[:]...)
	return hashFromKeccak(buf)
}

// TypedDigest computes the final signing digest: hash(prefix ‖ D ‖
// struct_hash). The prefix byte discriminates between message kinds
// (authorization vs. flow intent) so a struct hash meant for one can never
// be replayed as the other even if their field encodings happened to
// collide.
func TypedDigest(kind byte, domain, structHash Hash) Hash {
	buf := make([]byte, 0, len(typedDataPrefix)+1+32+32)
	buf = append(buf, []byte(typedDataPrefix)...)
	buf = append(buf, kind)
	buf = append(buf, domain[:]...)
	buf = append(buf, structHash[:]...)
	return hashFromKeccak(buf)
}

// Digest kind discriminators, passed to TypedDigest.
const (
	KindAuthorization byte = 0x01
	KindFlowIntent    byte = 0x02
)

// StructHashAuthorization hashes the ordered field list of an Authorization:
// grantor, grantee, token, max_per_pull, valid_after,
// valid_before, nonce. The signature itself is excluded; this is exactly
// the auth_hash used to key ConsentRegistry entries.
func StructHashAuthorization(grantor, grantee, token Address, maxPerPull *big.Int, validAfter, validBefore, nonce uint64) Hash {
	buf := make([]byte, 0, 256)
	buf = append(buf, grantor[:]...)
	buf = append(buf, grantee[:]...)
	buf = append(buf, token[:]...)
	buf = appendBigInt(buf, maxPerPull)
	buf = appendUint64(buf, validAfter)
	buf = appendUint64(buf, validBefore)
	buf = appendUint64(buf, nonce)
	return hashFromKeccak(buf)
}

// StructHashFlowIntent hashes the ordered field list of a FlowIntent:
// grantor, executor, src_domain, dst_domain, token,
// max_total, valid_after, valid_before, nonce, metadata_hash. This is the
// intent_hash used to key IntentRegistry entries.
func StructHashFlowIntent(grantor, executor Address, srcDomain, dstDomain Hash, token Address, maxTotal *big.Int, validAfter, validBefore, nonce uint64, metadataHash Hash) Hash {
	buf := make([]byte, 0, 256)
	buf = append(buf, grantor[:]...)
	buf = append(buf, executor[:]...)
	buf = append(buf, srcDomain[:]...)
	buf = append(buf, dstDomain[:]...)
	buf = append(buf, token[:]...)
	buf = appendBigInt(buf, maxTotal)
	buf = appendUint64(buf, validAfter)
	buf = appendUint64(buf, validBefore)
	buf = appendUint64(buf, nonce)
	buf = append(buf, metadataHash[:]...)
	return hashFromKeccak(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBigInt(buf []byte, v *big.Int) []byte {
	if v == nil {
		v = big.NewInt(0)
	}
	var tmp [32]byte
	v.FillBytes(tmp[:])
	return append(buf, tmp[:]...)
}

func hashFromKeccak(data []byte) Hash {
	var h Hash
	copy(h[:], ethcrypto.Keccak256(data))
	return h
}
