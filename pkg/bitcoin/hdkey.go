package bitcoin

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// HardenedOffset marks the boundary between normal and hardened child
// indices (spec.md §6): indices at or above this value derive using the
// parent's private key rather than its public key.
const HardenedOffset uint32 = 1 << 31

// hdKeyVersions carries the four magic bytes BIP32 extended keys use to
// self-identify network and public/private-ness.
var hdKeyVersions = map[NetworkType]struct{ priv, pub uint32 }{
	Mainnet: {priv: 0x0488ADE4, pub: 0x0488B21E},
	Testnet: {priv: 0x04358394, pub: 0x043587CF},
}

// ExtendedKey is a BIP32 HD key: a 32-byte key/chain-code pair plus the
// derivation metadata (depth, parent fingerprint, child index) needed to
// serialize it and to derive further children.
type ExtendedKey struct {
	Network     NetworkType
	Depth       byte
	ParentFP    [4]byte
	ChildIndex  uint32
	ChainCode   [32]byte
	PrivateKey  *PrivateKey // nil for a public-only extended key
	PublicKey   *PublicKey
}

// NewMasterKey derives the BIP32 master extended private key from a BIP39 (or
// otherwise generated) seed: I = HMAC-SHA512("Bitcoin seed", seed); IL is the
// master private key, IR is the master chain code.
func NewMasterKey(seed []byte, network NetworkType) (*ExtendedKey, error) {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	i := mac.Sum(nil)

	priv, err := PrivateKeyFromBytes(i[:32], true)
	if err != nil {
		return nil, err
	}
	key := &ExtendedKey{Network: network, PrivateKey: priv, PublicKey: priv.PubKey()}
	copy(key.ChainCode[:], i[32:])
	return key, nil
}

// IsHardened reports whether this key's own child index denotes hardened
// derivation (always false for the master key, whose ChildIndex is 0).
func (k *ExtendedKey) IsHardened() bool {
	return k.ChildIndex >= HardenedOffset
}

// Fingerprint is the first 4 bytes of hash160(compressed pubkey), used as
// the parent fingerprint field of this key's children.
func (k *ExtendedKey) Fingerprint() [4]byte {
	h := ComputeHash160(k.PublicKey.AsCompressed().Bytes())
	var fp [4]byte
	copy(fp[:], h[:4])
	return fp
}

// Child derives child index `index` of this key. Indices >= HardenedOffset
// require PrivateKey to be set.
func (k *ExtendedKey) Child(index uint32) (*ExtendedKey, error) {
	hardened := index >= HardenedOffset

	var data []byte
	if hardened {
		if k.PrivateKey == nil {
			return nil, NewError(ErrInvalidPrivateKey, "hardened derivation requires a private key")
		}
		data = append([]byte{0x00}, k.PrivateKey.Bytes()...)
	} else {
		data = k.PublicKey.AsCompressed().Bytes()
	}
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], index)
	data = append(data, idxBytes[:]...)

	mac := hmac.New(sha512.New, k.ChainCode[:])
	mac.Write(data)
	i := mac.Sum(nil)

	var childChainCode [32]byte
	copy(childChainCode[:], i[32:])

	child := &ExtendedKey{
		Network:    k.Network,
		Depth:      k.Depth + 1,
		ParentFP:   k.Fingerprint(),
		ChildIndex: index,
		ChainCode:  childChainCode,
	}

	if k.PrivateKey != nil {
		var il secp256k1.ModNScalar
		if il.SetByteSlice(i[:32]) {
			return nil, NewError(ErrInvalidPrivateKey, "derived IL out of range")
		}
		var parentScalar secp256k1.ModNScalar
		parentScalar.SetByteSlice(k.PrivateKey.Bytes())
		il.Add(&parentScalar)
		if il.IsZero() {
			return nil, NewError(ErrInvalidPrivateKey, "derived child key is zero")
		}
		childKey := secp256k1.NewPrivateKey(&il)
		child.PrivateKey = &PrivateKey{key: childKey, compressed: true}
		child.PublicKey = child.PrivateKey.PubKey()
		return child, nil
	}

	// Public-only derivation: childPub = parentPub + IL*G.
	var il secp256k1.ModNScalar
	if il.SetByteSlice(i[:32]) {
		return nil, NewError(ErrInvalidPublicKey, "derived IL out of range")
	}
	var tangent secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&il, &tangent)
	var parentPoint secp256k1.JacobianPoint
	k.PublicKey.key.AsJacobian(&parentPoint)
	var sum secp256k1.JacobianPoint
	secp256k1.AddNonConst(&tangent, &parentPoint, &sum)
	sum.ToAffine()
	childPub := secp256k1.NewPublicKey(&sum.X, &sum.Y)
	child.PublicKey = &PublicKey{key: childPub, compressed: true}
	return child, nil
}

// DerivePath walks a sequence of child indices in order (e.g. the indices
// of m/44'/0'/0'/0/0, hardened ones already offset by the caller).
func (k *ExtendedKey) DerivePath(indices []uint32) (*ExtendedKey, error) {
	cur := k
	for _, idx := range indices {
		next, err := cur.Child(idx)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// Neuter returns the public-only counterpart of this key (drops the private
// key, keeping the chain code so public derivation still works).
func (k *ExtendedKey) Neuter() *ExtendedKey {
	return &ExtendedKey{
		Network:    k.Network,
		Depth:      k.Depth,
		ParentFP:   k.ParentFP,
		ChildIndex: k.ChildIndex,
		ChainCode:  k.ChainCode,
		PublicKey:  k.PublicKey,
	}
}

// String serializes the extended key per BIP32: base58check(version(4) ∥
// depth(1) ∥ parentFP(4) ∥ childIndex(4) ∥ chainCode(32) ∥ key(33)).
func (k *ExtendedKey) String() string {
	versions := hdKeyVersions[k.Network]
	version := versions.pub
	var keyBytes [33]byte
	if k.PrivateKey != nil {
		version = versions.priv
		copy(keyBytes[1:], k.PrivateKey.Bytes())
	} else {
		copy(keyBytes[:], k.PublicKey.AsCompressed().Bytes())
	}

	payload := make([]byte, 0, 78)
	var versionBytes [4]byte
	binary.BigEndian.PutUint32(versionBytes[:], version)
	payload = append(payload, versionBytes[:]...)
	payload = append(payload, k.Depth)
	payload = append(payload, k.ParentFP[:]...)
	var idxBytes [4]byte
	binary.BigEndian.PutUint32(idxBytes[:], k.ChildIndex)
	payload = append(payload, idxBytes[:]...)
	payload = append(payload, k.ChainCode[:]...)
	payload = append(payload, keyBytes[:]...)

	return Base58CheckEncode(payload)
}

// ParseExtendedKey decodes a BIP32 extended key string.
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	payload, err := Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if len(payload) != 78 {
		return nil, NewError(ErrInvalidPrivateKey, "extended key payload must be 78 bytes")
	}

	version := binary.BigEndian.Uint32(payload[0:4])
	var network NetworkType
	var isPrivate bool
	found := false
	for net, versions := range hdKeyVersions {
		if versions.priv == version {
			network, isPrivate, found = net, true, true
		}
		if versions.pub == version {
			network, isPrivate, found = net, false, true
		}
	}
	if !found {
		return nil, NewError(ErrUnknownVersionByte, "unrecognized extended key version")
	}

	key := &ExtendedKey{Network: network, Depth: payload[4]}
	copy(key.ParentFP[:], payload[5:9])
	key.ChildIndex = binary.BigEndian.Uint32(payload[9:13])
	copy(key.ChainCode[:], payload[13:45])

	keyField := payload[45:78]
	if isPrivate {
		if keyField[0] != 0x00 {
			return nil, NewError(ErrInvalidPrivateKey, "private extended key missing leading zero byte")
		}
		priv, err := PrivateKeyFromBytes(keyField[1:], true)
		if err != nil {
			return nil, err
		}
		key.PrivateKey = priv
		key.PublicKey = priv.PubKey()
	} else {
		pub, err := PublicKeyFromBytes(keyField)
		if err != nil {
			return nil, err
		}
		key.PublicKey = pub
	}
	return key, nil
}
