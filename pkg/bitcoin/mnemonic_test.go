package bitcoin_test

import (
	"strings"
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestNewMnemonic_WordCounts tests every supported word count produces a
// valid mnemonic with the expected number of words.
func TestNewMnemonic_WordCounts(t *testing.T) {
	tests := []struct {
		words int
	}{{12}, {15}, {18}, {21}, {24}}
	for _, tc := range tests {
		mnemonic, err := bitcoin.NewMnemonic(tc.words)
		if err != nil {
			t.Fatalf("NewMnemonic(%d): %v", tc.words, err)
		}
		if got := len(strings.Fields(mnemonic)); got != tc.words {
			t.Errorf("NewMnemonic(%d) produced %d words, want %d", tc.words, got, tc.words)
		}
		if !bitcoin.ValidateMnemonic(mnemonic) {
			t.Errorf("NewMnemonic(%d) produced an invalid mnemonic", tc.words)
		}
	}
}

// TestNewMnemonic_RejectsUnsupportedWordCount tests the guard on word
// counts outside {12,15,18,21,24}.
func TestNewMnemonic_RejectsUnsupportedWordCount(t *testing.T) {
	if _, err := bitcoin.NewMnemonic(13); err == nil {
		t.Error("expected error for unsupported word count")
	}
}

// TestValidateMnemonic_RejectsTamperedChecksum tests that flipping the last
// word of a valid mnemonic (almost always) breaks its checksum.
func TestValidateMnemonic_RejectsTamperedChecksum(t *testing.T) {
	if bitcoin.ValidateMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon") {
		t.Error("twelve 'abandon's should fail checksum validation")
	}
}

// TestSeedFromMnemonic_Deterministic tests that the same mnemonic and
// passphrase always derive the same seed, and that a different passphrase
// derives a different one.
func TestSeedFromMnemonic_Deterministic(t *testing.T) {
	mnemonic, err := bitcoin.NewMnemonic(12)
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}

	a, err := bitcoin.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	b, err := bitcoin.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if string(a) != string(b) {
		t.Error("SeedFromMnemonic is not deterministic for the same inputs")
	}
	if len(a) != 64 {
		t.Errorf("len(seed) = %d, want 64", len(a))
	}

	c, err := bitcoin.SeedFromMnemonic(mnemonic, "a passphrase")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if string(a) == string(c) {
		t.Error("different passphrases produced the same seed")
	}
}

// TestSeedFromMnemonic_RejectsInvalidMnemonic tests that a non-wordlist
// phrase is rejected rather than silently seeded.
func TestSeedFromMnemonic_RejectsInvalidMnemonic(t *testing.T) {
	if _, err := bitcoin.SeedFromMnemonic("not a real bip39 mnemonic phrase at all nope", ""); err == nil {
		t.Error("expected error for an invalid mnemonic")
	}
}
