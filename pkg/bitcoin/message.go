package bitcoin

import (
	"encoding/base64"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const messageMagic = "\x18Bitcoin Signed Message:\n"

// messageDigest computes hash256(magic ∥ varint(len(msg)) ∥ msg), the
// digest a "signed message" commits to (spec.md §6).
func messageDigest(msg []byte) Hash256 {
	buf := make([]byte, 0, len(messageMagic)+9+len(msg))
	buf = append(buf, messageMagic...)
	buf = append(buf, EncodeVarInt(uint64(len(msg)))...)
	buf = append(buf, msg...)
	return Hash256Raw(buf)
}

// SignMessage signs msg with key and returns the base64 encoding of the
// 65-byte recoverable signature: a header byte (27 + recId + (4 if the
// key's public form is compressed)) followed by the 64-byte (r ∥ s).
func SignMessage(key *PrivateKey, msg []byte) (string, error) {
	digest := messageDigest(msg)
	sig := ecdsa.SignCompact(key.key, digest.Bytes(), key.compressed)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// RecoverMessageSigner recovers the public key that produced sig (base64 of
// the 65-byte recoverable signature) over msg. The returned key remembers
// whether the signature's header marked it as compressed.
func RecoverMessageSigner(sig string, msg []byte) (*PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return nil, NewError(ErrInvalidDERSignature, "signed message is not valid base64")
	}
	if len(raw) != 65 {
		return nil, NewError(ErrInvalidDERSignature, "recoverable signature must be 65 bytes")
	}
	digest := messageDigest(msg)
	pub, compressed, err := ecdsa.RecoverCompact(raw, digest.Bytes())
	if err != nil {
		return nil, NewError(ErrInvalidDERSignature, err.Error())
	}
	return &PublicKey{key: pub, compressed: compressed}, nil
}

// VerifyMessage reports whether sig is a valid signed-message signature by
// pub over msg.
func VerifyMessage(pub *PublicKey, sig string, msg []byte) bool {
	recovered, err := RecoverMessageSigner(sig, msg)
	if err != nil {
		return false
	}
	return recovered.key.IsEqual(pub.key)
}
