package bitcoin_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestHash256_StringRoundTrip tests that the byte-reversed display form
// decodes back to the same internal hash.
func TestHash256_StringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{name: "all zero", hex: "0000000000000000000000000000000000000000000000000000000000000000"},
		{name: "genesis-like", hex: "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"},
		{name: "ascending bytes", hex: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, err := bitcoin.NewHash256FromString(tc.hex)
			if err != nil {
				t.Fatalf("NewHash256FromString: %v", err)
			}
			if got := h.String(); got != tc.hex {
				t.Errorf("String() = %s, want %s", got, tc.hex)
			}
		})
	}
}

// TestHash256_FromBytesRejectsWrongLength tests that non-32-byte input fails.
func TestHash256_FromBytesRejectsWrongLength(t *testing.T) {
	if _, err := bitcoin.NewHash256FromBytes(make([]byte, 31)); err == nil {
		t.Error("expected error for 31-byte input")
	}
	if _, err := bitcoin.NewHash256FromBytes(make([]byte, 33)); err == nil {
		t.Error("expected error for 33-byte input")
	}
	if _, err := bitcoin.NewHash256FromBytes(make([]byte, 32)); err != nil {
		t.Errorf("unexpected error for 32-byte input: %v", err)
	}
}

// TestHash256Raw_KnownVector tests double-SHA256 against a known digest.
func TestHash256Raw_KnownVector(t *testing.T) {
	// sha256(sha256("")) = 5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456
	want, _ := hex.DecodeString("5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456")
	got := bitcoin.Hash256Raw(nil)
	if !bytes.Equal(got.Bytes(), want) {
		t.Errorf("Hash256Raw(nil) = %x, want %x", got.Bytes(), want)
	}
}

// TestHash256_IsZero tests the zero-hash predicate.
func TestHash256_IsZero(t *testing.T) {
	if !bitcoin.ZeroHash.IsZero() {
		t.Error("ZeroHash.IsZero() = false, want true")
	}
	h := bitcoin.Hash256Raw([]byte("anything"))
	if h.IsZero() {
		t.Error("non-zero hash reported IsZero() = true")
	}
}

// TestComputeHash160_KnownVector tests hash160 against a known SHA256+RIPEMD160
// chain for an empty input.
func TestComputeHash160_KnownVector(t *testing.T) {
	// ripemd160(sha256("")) = b472a266d0bd89c13706a4132ccfb16f7c3b9fcb
	want, _ := hex.DecodeString("b472a266d0bd89c13706a4132ccfb16f7c3b9fcb")
	got := bitcoin.ComputeHash160(nil)
	if !bytes.Equal(got.Bytes(), want) {
		t.Errorf("ComputeHash160(nil) = %x, want %x", got.Bytes(), want)
	}
}

// TestRipemd160Sum_DiffersFromHash160 tests that OP_RIPEMD160's bare digest
// is not the same construction as hash160.
func TestRipemd160Sum_DiffersFromHash160(t *testing.T) {
	data := []byte("test input")
	bare := bitcoin.Ripemd160Sum(data)
	h160 := bitcoin.ComputeHash160(data)
	if bytes.Equal(bare, h160.Bytes()) {
		t.Error("Ripemd160Sum(data) should not equal ComputeHash160(data)")
	}
}

// TestHash160_FromBytesRejectsWrongLength tests the 20-byte length check.
func TestHash160_FromBytesRejectsWrongLength(t *testing.T) {
	if _, err := bitcoin.NewHash160FromBytes(make([]byte, 19)); err == nil {
		t.Error("expected error for 19-byte input")
	}
	if _, err := bitcoin.NewHash160FromBytes(make([]byte, 20)); err != nil {
		t.Errorf("unexpected error for 20-byte input: %v", err)
	}
}
