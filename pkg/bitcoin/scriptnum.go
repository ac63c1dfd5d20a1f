package bitcoin

// ScriptNum is Bitcoin Script's little-endian, sign-magnitude, minimally
// encoded integer format. The interpreter bounds arithmetic operands to 4
// bytes (the pre-Genesis rule); a result may overflow to 5 bytes but any
// further arithmetic on that 5-byte value fails.
type ScriptNum int64

const (
	// defaultScriptNumLen is the maximum operand width accepted by
	// arithmetic opcodes under the pre-Genesis 4-byte rule.
	defaultScriptNumLen = 4
	// maxScriptNumLen is the wider bound used when reading a count that is
	// merely pushed rather than operated on: the m/n counts the P2MS
	// template parser recovers from a CHECKMULTISIG script.
	maxScriptNumLen = 5
)

// ScriptNumFromBytes decodes b into a ScriptNum. maxLen bounds the accepted
// operand width (4 for ordinary arithmetic inputs); minimal requires the
// canonical minimal encoding (MINIMALDATA).
func ScriptNumFromBytes(b []byte, maxLen int, minimal bool) (ScriptNum, error) {
	if len(b) > maxLen {
		return 0, NewScriptError(SEImpossibleEncoding, 0, 0, "scriptnum exceeds max length")
	}
	if minimal && len(b) > 0 {
		last := b[len(b)-1]
		if last&0x7f == 0 {
			if len(b) == 1 || b[len(b)-2]&0x80 == 0 {
				return 0, NewScriptError(SEBadNumberEncoding, 0, 0, "non-minimal scriptnum encoding")
			}
		}
	}
	if len(b) == 0 {
		return 0, nil
	}

	var result int64
	for i, v := range b {
		result |= int64(v) << uint(8*i)
	}

	if b[len(b)-1]&0x80 != 0 {
		result &= ^(int64(0x80) << uint(8*(len(b)-1)))
		return ScriptNum(-result), nil
	}
	return ScriptNum(result), nil
}

// Bytes encodes the ScriptNum in minimal little-endian sign-magnitude form.
// Zero encodes to the empty byte string.
func (n ScriptNum) Bytes() []byte {
	if n == 0 {
		return nil
	}

	isNegative := n < 0
	abs := uint64(n)
	if isNegative {
		abs = uint64(-n)
	}

	var result []byte
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	if result[len(result)-1]&0x80 != 0 {
		if isNegative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 clamps the ScriptNum to the int32 range, the width most opcodes that
// consume a count (e.g. OP_PICK depth) actually want.
func (n ScriptNum) Int32() int32 {
	if n > 2147483647 {
		return 2147483647
	}
	if n < -2147483648 {
		return -2147483648
	}
	return int32(n)
}

// IsTrue implements Bitcoin's boolean coercion: any byte string that is not
// all-zero, and not "negative zero" (all-zero except a trailing 0x80), is
// true. Equality against a constant is deliberately never used for this —
// see is_true in spec.md §9.
func IsTrue(data []byte) bool {
	for i, b := range data {
		if b == 0 {
			continue
		}
		if i == len(data)-1 && b == 0x80 {
			return false
		}
		return true
	}
	return false
}
