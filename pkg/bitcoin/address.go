package bitcoin

// NetworkType distinguishes mainnet from testnet parameter sets.
type NetworkType int

const (
	Mainnet NetworkType = iota
	Testnet
)

// AddressType distinguishes the two standard address-carrying templates.
type AddressType int

const (
	AddressP2PKH AddressType = iota
	AddressP2SH
)

// addressVersion is a decoded view of the meaning of a single version byte
// (spec.md §4.3's small table).
type addressVersion struct {
	network NetworkType
	kind    AddressType
}

var addressVersions = map[byte]addressVersion{
	0x00: {Mainnet, AddressP2PKH},
	0x05: {Mainnet, AddressP2SH},
	0x6F: {Testnet, AddressP2PKH},
	0xC4: {Testnet, AddressP2SH},
}

var addressVersionByte = map[addressVersion]byte{
	{Mainnet, AddressP2PKH}: 0x00,
	{Mainnet, AddressP2SH}:  0x05,
	{Testnet, AddressP2PKH}: 0x6F,
	{Testnet, AddressP2SH}:  0xC4,
}

// Address is a base58check-encoded {version, hash160} pair.
type Address struct {
	Version byte
	Hash160 Hash160
	Network NetworkType
	Type    AddressType
}

// NewP2PKHAddress builds an address from a public key's *exact* encoded
// form (compressed vs. uncompressed changes the resulting hash160 — this is
// deliberate, spec.md §4.3).
func NewP2PKHAddress(pub *PublicKey, network NetworkType) *Address {
	return &Address{
		Version: addressVersionByte[addressVersion{network, AddressP2PKH}],
		Hash160: ComputeHash160(pub.Bytes()),
		Network: network,
		Type:    AddressP2PKH,
	}
}

// NewP2SHAddress builds a P2SH address from a redeem script's serialized
// bytes.
func NewP2SHAddress(redeemScript Script, network NetworkType) *Address {
	return &Address{
		Version: addressVersionByte[addressVersion{network, AddressP2SH}],
		Hash160: ComputeHash160(redeemScript.Bytes()),
		Network: network,
		Type:    AddressP2SH,
	}
}

// NewAddressFromHash160 builds an address directly from a known hash160,
// e.g. one recovered by a script builder parser.
func NewAddressFromHash160(h Hash160, network NetworkType, kind AddressType) *Address {
	return &Address{
		Version: addressVersionByte[addressVersion{network, kind}],
		Hash160: h,
		Network: network,
		Type:    kind,
	}
}

// String encodes the address as base58check(version ∥ hash160).
func (a *Address) String() string {
	payload := make([]byte, 0, 21)
	payload = append(payload, a.Version)
	payload = append(payload, a.Hash160[:]...)
	return Base58CheckEncode(payload)
}

// DecodeAddress parses a base58check address string, rejecting anything
// whose decoded payload is not exactly 21 bytes (1 version + 20 hash) or
// whose version byte is not in the known table.
func DecodeAddress(s string) (*Address, error) {
	payload, err := Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if len(payload) != 21 {
		return nil, NewError(ErrInvalidAddressLength, "address payload must decode to 21 bytes")
	}
	meta, ok := addressVersions[payload[0]]
	if !ok {
		return nil, NewError(ErrUnknownVersionByte, "unrecognized address version byte")
	}
	h160, _ := NewHash160FromBytes(payload[1:])
	return &Address{
		Version: payload[0],
		Hash160: h160,
		Network: meta.network,
		Type:    meta.kind,
	}, nil
}
