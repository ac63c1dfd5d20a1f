package bitcoin

import (
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// mnemonicEntropyBits maps word count to required entropy bits (spec.md
// §6): each word encodes 11 bits, with ENT/32 checksum bits appended.
var mnemonicEntropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// NewMnemonic generates a fresh BIP39 mnemonic with the given word count
// (12, 15, 18, 21, or 24).
func NewMnemonic(wordCount int) (string, error) {
	bits, ok := mnemonicEntropyBits[wordCount]
	if !ok {
		return "", NewError(ErrInvalidPrivateKey, "word count must be one of 12, 15, 18, 21, 24")
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", errors.Wrap(err, "generate mnemonic entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "encode mnemonic")
	}
	return mnemonic, nil
}

// ValidateMnemonic checks the mnemonic's wordlist membership and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 64-byte BIP39 seed:
// PBKDF2-HMAC-SHA512(mnemonic, "mnemonic" ∥ passphrase, 2048, 64).
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, NewError(ErrInvalidPrivateKey, "invalid BIP39 mnemonic")
	}
	return bip39.NewSeed(mnemonic, passphrase), nil
}
