package bitcoin

import (
	"encoding/binary"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

// EncodeVarInt encodes n as a Bitcoin variable-length integer. The encoder
// always emits the canonical (shortest) form; DecodeVarInt accepts any
// form the bytes happen to use.
func EncodeVarInt(n uint64) []byte {
	switch {
	case n < 0xfd:
		return []byte{byte(n)}
	case n <= 0xffff:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		return buf
	case n <= 0xffffffff:
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(n))
		return buf
	default:
		buf := make([]byte, 9)
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], n)
		return buf
	}
}

// DecodeVarInt decodes a Bitcoin variable-length integer from the start of
// data, returning the value and the number of bytes consumed.
func DecodeVarInt(data []byte) (value uint64, read int, err error) {
	if len(data) == 0 {
		return 0, 0, errors.New("varint: empty input")
	}
	switch first := data[0]; {
	case first < 0xfd:
		return uint64(first), 1, nil
	case first == 0xfd:
		if len(data) < 3 {
			return 0, 0, errors.New("varint: truncated 0xfd form")
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), 3, nil
	case first == 0xfe:
		if len(data) < 5 {
			return 0, 0, errors.New("varint: truncated 0xfe form")
		}
		return uint64(binary.LittleEndian.Uint32(data[1:5])), 5, nil
	default:
		if len(data) < 9 {
			return 0, 0, errors.New("varint: truncated 0xff form")
		}
		return binary.LittleEndian.Uint64(data[1:9]), 9, nil
	}
}

// VarIntSize returns the number of bytes EncodeVarInt(n) would produce,
// without allocating.
func VarIntSize(n uint64) int {
	switch {
	case n < 0xfd:
		return 1
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// Base58CheckEncode emits base58(payload ∥ hash256(payload)[0:4]), the
// generic checksum framing used by addresses and extended BIP32 keys alike.
func Base58CheckEncode(payload []byte) string {
	checksum := Hash256Raw(payload)
	full := make([]byte, 0, len(payload)+4)
	full = append(full, payload...)
	full = append(full, checksum[:4]...)
	return base58.Encode(full)
}

// Base58CheckDecode reverses Base58CheckEncode, verifying the trailing
// 4-byte checksum and returning the payload without it.
func Base58CheckDecode(s string) ([]byte, error) {
	full := base58.Decode(s)
	if len(full) < 4 {
		return nil, NewError(ErrInvalidBase58, "base58check input too short")
	}
	payload := full[:len(full)-4]
	checksum := full[len(full)-4:]
	want := Hash256Raw(payload)
	for i := 0; i < 4; i++ {
		if checksum[i] != want[i] {
			return nil, NewError(ErrInvalidChecksum, "base58check checksum mismatch")
		}
	}
	return payload, nil
}
