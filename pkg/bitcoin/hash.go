package bitcoin

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the hash160 construction
)

// Hash256 represents a 256-bit hash (32 bytes), e.g. a txid or block hash.
type Hash256 [32]byte

// ZeroHash is the all-zero Hash256, used for coinbase previous-outpoints.
var ZeroHash = Hash256{}

// NewHash256FromBytes creates a Hash256 from a 32-byte slice.
func NewHash256FromBytes(b []byte) (Hash256, error) {
	if len(b) != 32 {
		return ZeroHash, NewError(ErrInvalidHex, "hash256 must be exactly 32 bytes")
	}
	var hash Hash256
	copy(hash[:], b)
	return hash, nil
}

// NewHash256FromString creates a Hash256 from its byte-reversed hex
// representation, the form txids and block hashes are conventionally
// printed in.
func NewHash256FromString(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHash, NewError(ErrInvalidHex, err.Error())
	}
	if len(b) != 32 {
		return ZeroHash, NewError(ErrInvalidHex, "hash256 hex must decode to 32 bytes")
	}
	var hash Hash256
	for i := range b {
		hash[i] = b[len(b)-1-i]
	}
	return hash, nil
}

// String renders the hash byte-reversed, matching how txids and block
// hashes are conventionally displayed.
func (h Hash256) String() string {
	rev := make([]byte, 32)
	for i := range h {
		rev[i] = h[31-i]
	}
	return hex.EncodeToString(rev)
}

// Bytes returns the hash in its internal (non-reversed) byte order.
func (h Hash256) Bytes() []byte {
	return h[:]
}

// IsZero reports whether the hash is all zeros.
func (h Hash256) IsZero() bool {
	return h == ZeroHash
}

// Hash256Raw double-SHA256s data and returns the raw digest.
func Hash256Raw(data []byte) Hash256 {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return Hash256(second)
}

// DoubleHashSHA256 double-SHA256s arbitrary data. It is identical to
// Hash256Raw; the package's own message-signing and sighash code calls
// Hash256Raw directly.
func DoubleHashSHA256(data []byte) Hash256 {
	return Hash256Raw(data)
}

// Hash160 represents a 160-bit hash (20 bytes), used for pubkey-hash and
// script-hash addresses.
type Hash160 [20]byte

// ZeroHash160 is the all-zero Hash160.
var ZeroHash160 = Hash160{}

// NewHash160FromBytes creates a Hash160 from a 20-byte slice.
func NewHash160FromBytes(b []byte) (Hash160, error) {
	if len(b) != 20 {
		return ZeroHash160, NewError(ErrInvalidHex, "hash160 must be exactly 20 bytes")
	}
	var hash Hash160
	copy(hash[:], b)
	return hash, nil
}

// String returns the hash160 as a hex string.
func (h Hash160) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the hash160 as a byte slice.
func (h Hash160) Bytes() []byte {
	return h[:]
}

// ComputeHash160 computes RIPEMD160(SHA256(x)), the construction used
// throughout Bitcoin for public-key and script hashes.
func ComputeHash160(data []byte) Hash160 {
	sum := sha256.Sum256(data)
	var out Hash160
	copy(out[:], Ripemd160Sum(sum[:]))
	return out
}

// Ripemd160Sum computes the bare RIPEMD160 digest of data, used directly by
// the interpreter's OP_RIPEMD160 (as opposed to the SHA256-then-RIPEMD160
// construction ComputeHash160 performs).
func Ripemd160Sum(data []byte) []byte {
	r := ripemd160.New()
	r.Write(data) //nolint:errcheck // ripemd160.digest.Write never errors
	return r.Sum(nil)
}
