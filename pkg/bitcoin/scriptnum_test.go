package bitcoin_test

import (
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestScriptNum_RoundTrip tests that encoding then decoding a value returns
// the original, for a spread of positive, negative, and boundary values.
func TestScriptNum_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, -129, 255, 256, 32767, 32768, -32768, 2147483647, -2147483648}
	for _, v := range values {
		n := bitcoin.ScriptNum(v)
		encoded := n.Bytes()
		decoded, err := bitcoin.ScriptNumFromBytes(encoded, 5, true)
		if err != nil {
			t.Fatalf("ScriptNumFromBytes(%v): %v", encoded, err)
		}
		if int64(decoded) != v {
			t.Errorf("round trip of %d produced %d (encoded %x)", v, decoded, encoded)
		}
	}
}

// TestScriptNum_ZeroEncodesEmpty tests that zero has the canonical empty
// encoding.
func TestScriptNum_ZeroEncodesEmpty(t *testing.T) {
	if b := bitcoin.ScriptNum(0).Bytes(); len(b) != 0 {
		t.Errorf("ScriptNum(0).Bytes() = %x, want empty", b)
	}
}

// TestScriptNumFromBytes_RejectsOversizedOperand tests the 4-byte
// pre-Genesis arithmetic bound.
func TestScriptNumFromBytes_RejectsOversizedOperand(t *testing.T) {
	five := []byte{1, 2, 3, 4, 5}
	if _, err := bitcoin.ScriptNumFromBytes(five, 4, true); err == nil {
		t.Error("expected error for 5-byte operand under maxLen=4")
	}
	if _, err := bitcoin.ScriptNumFromBytes(five, 5, true); err != nil {
		t.Errorf("unexpected error for 5-byte operand under maxLen=5: %v", err)
	}
}

// TestScriptNumFromBytes_MinimalEncoding tests that MINIMALDATA rejects
// non-minimal zero-padding.
func TestScriptNumFromBytes_MinimalEncoding(t *testing.T) {
	nonMinimal := []byte{0x01, 0x00} // could be encoded as just {0x01}
	if _, err := bitcoin.ScriptNumFromBytes(nonMinimal, 4, true); err == nil {
		t.Error("expected error for non-minimal encoding when minimal=true")
	}
	if _, err := bitcoin.ScriptNumFromBytes(nonMinimal, 4, false); err != nil {
		t.Errorf("unexpected error for non-minimal encoding when minimal=false: %v", err)
	}
}

// TestIsTrue tests Bitcoin's boolean coercion, including the negative-zero
// special case.
func TestIsTrue(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "empty is false", data: []byte{}, want: false},
		{name: "single zero is false", data: []byte{0x00}, want: false},
		{name: "negative zero is false", data: []byte{0x00, 0x00, 0x80}, want: false},
		{name: "single nonzero byte is true", data: []byte{0x01}, want: true},
		{name: "trailing 0x80 with nonzero earlier byte is true", data: []byte{0x01, 0x80}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bitcoin.IsTrue(tc.data); got != tc.want {
				t.Errorf("IsTrue(%x) = %v, want %v", tc.data, got, tc.want)
			}
		})
	}
}
