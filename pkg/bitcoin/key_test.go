package bitcoin_test

import (
	"bytes"
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestPrivateKey_WIFRoundTrip tests that encoding a generated key to WIF and
// decoding it back preserves the scalar, network, and compression flag.
func TestPrivateKey_WIFRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		network    bitcoin.NetworkType
		compressed bool
	}{
		{name: "mainnet compressed", network: bitcoin.Mainnet, compressed: true},
		{name: "mainnet uncompressed", network: bitcoin.Mainnet, compressed: false},
		{name: "testnet compressed", network: bitcoin.Testnet, compressed: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, err := bitcoin.NewPrivateKey()
			if err != nil {
				t.Fatalf("NewPrivateKey: %v", err)
			}
			key, err = bitcoin.PrivateKeyFromBytes(key.Bytes(), tc.compressed)
			if err != nil {
				t.Fatalf("PrivateKeyFromBytes: %v", err)
			}
			wif := key.WIF(tc.network)
			decoded, network, err := bitcoin.PrivateKeyFromWIF(wif)
			if err != nil {
				t.Fatalf("PrivateKeyFromWIF: %v", err)
			}
			if network != tc.network {
				t.Errorf("network = %v, want %v", network, tc.network)
			}
			if decoded.Compressed() != tc.compressed {
				t.Errorf("compressed = %v, want %v", decoded.Compressed(), tc.compressed)
			}
			if !bytes.Equal(decoded.Bytes(), key.Bytes()) {
				t.Error("decoded scalar does not match original")
			}
		})
	}
}

// TestPrivateKeyFromBytes_RejectsWrongLength tests the 32-byte length check.
func TestPrivateKeyFromBytes_RejectsWrongLength(t *testing.T) {
	if _, err := bitcoin.PrivateKeyFromBytes(make([]byte, 31), true); err == nil {
		t.Error("expected error for 31-byte scalar")
	}
}

// TestPrivateKeyFromBytes_RejectsZeroScalar tests that the zero scalar,
// which is out of the valid [1, n) range, is rejected.
func TestPrivateKeyFromBytes_RejectsZeroScalar(t *testing.T) {
	if _, err := bitcoin.PrivateKeyFromBytes(make([]byte, 32), true); err == nil {
		t.Error("expected error for zero scalar")
	}
}

// TestPublicKey_BytesRespectsCompressionFlag tests that Bytes() returns 33
// bytes for a compressed key and 65 for an uncompressed one, and that
// AsCompressed/AsUncompressed convert between the two.
func TestPublicKey_BytesRespectsCompressionFlag(t *testing.T) {
	key, err := bitcoin.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	pub := key.PubKey()
	if len(pub.Bytes()) != 33 {
		t.Errorf("compressed key Bytes() length = %d, want 33", len(pub.Bytes()))
	}
	uncompressed := pub.AsUncompressed()
	if len(uncompressed.Bytes()) != 65 {
		t.Errorf("uncompressed key Bytes() length = %d, want 65", len(uncompressed.Bytes()))
	}
	roundTrip := uncompressed.AsCompressed()
	if !bytes.Equal(roundTrip.Bytes(), pub.Bytes()) {
		t.Error("AsCompressed() after AsUncompressed() did not restore compressed encoding")
	}
}

// TestPublicKeyFromBytes_RemembersEncoding tests that parsing a 33-byte key
// is reported as compressed and a 65-byte key as uncompressed.
func TestPublicKeyFromBytes_RemembersEncoding(t *testing.T) {
	key, _ := bitcoin.NewPrivateKey()
	compressed, err := bitcoin.PublicKeyFromBytes(key.PubKey().SerializeCompressed())
	if err != nil {
		t.Fatalf("PublicKeyFromBytes (compressed): %v", err)
	}
	if !compressed.Compressed() {
		t.Error("33-byte key parsed as uncompressed")
	}
	uncompressed, err := bitcoin.PublicKeyFromBytes(key.PubKey().SerializeUncompressed())
	if err != nil {
		t.Fatalf("PublicKeyFromBytes (uncompressed): %v", err)
	}
	if uncompressed.Compressed() {
		t.Error("65-byte key parsed as compressed")
	}
}

// TestSignAndVerify_RoundTrip tests that a signature produced by Sign
// verifies against the matching public key and digest, and fails against a
// different digest.
func TestSignAndVerify_RoundTrip(t *testing.T) {
	key, err := bitcoin.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	digest := bitcoin.Hash256Raw([]byte("transaction preimage"))
	sig := key.Sign(digest)
	if !key.PubKey().Verify(digest, sig) {
		t.Error("signature did not verify against its own digest")
	}
	otherDigest := bitcoin.Hash256Raw([]byte("a different preimage"))
	if key.PubKey().Verify(otherDigest, sig) {
		t.Error("signature verified against an unrelated digest")
	}
}

// TestSign_ProducesLowS tests that every signature Sign produces satisfies
// the LOW_S canonical form, matching DER re-parsed off the wire.
func TestSign_ProducesLowS(t *testing.T) {
	key, err := bitcoin.NewPrivateKey()
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	for i := 0; i < 10; i++ {
		digest := bitcoin.Hash256Raw([]byte{byte(i)})
		sig := key.Sign(digest)
		parsed, err := bitcoin.ParseDERSignature(sig.Serialize())
		if err != nil {
			t.Fatalf("ParseDERSignature: %v", err)
		}
		if !parsed.IsLowS() {
			t.Errorf("signature %d is not low-S", i)
		}
	}
}

// TestParseDERSignature_RejectsGarbage tests that malformed DER input is an
// error, never a panic.
func TestParseDERSignature_RejectsGarbage(t *testing.T) {
	if _, err := bitcoin.ParseDERSignature([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for non-DER input")
	}
}
