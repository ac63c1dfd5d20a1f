package bitcoin_test

import (
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestP2PKHLockBuilder_ParseRoundTrip tests that a built P2PKH locking
// script parses back to the same hash160.
func TestP2PKHLockBuilder_ParseRoundTrip(t *testing.T) {
	h160 := bitcoin.ComputeHash160([]byte("pubkey bytes"))
	script := bitcoin.NewP2PKHLockBuilder(h160).LockingScript()
	parsed, err := bitcoin.ParseP2PKHLockingScript(script)
	if err != nil {
		t.Fatalf("ParseP2PKHLockingScript: %v", err)
	}
	if parsed.Hash160 != h160 {
		t.Error("parsed hash160 does not match original")
	}
}

// TestP2PKHLockBuilder_ParseRejectsOtherTemplates tests that a non-P2PKH
// script is reported as NotAStandardTemplate rather than silently parsed.
func TestP2PKHLockBuilder_ParseRejectsOtherTemplates(t *testing.T) {
	other := bitcoin.NewScriptBuilder().AddOp(bitcoin.OP_1).AddOp(bitcoin.OP_CHECKMULTISIG).Script()
	if _, err := bitcoin.ParseP2PKHLockingScript(other); err == nil {
		t.Error("expected NotAStandardTemplate for a non-P2PKH script")
	}
}

// TestP2PKHUnlockBuilder_RequiresExactlyOneSignature tests the arity check.
func TestP2PKHUnlockBuilder_RequiresExactlyOneSignature(t *testing.T) {
	key, _ := bitcoin.NewPrivateKey()
	b := bitcoin.NewP2PKHUnlockBuilder(key.PubKey())
	if _, err := b.UnlockingScript(nil); err == nil {
		t.Error("expected error for zero signatures")
	}
	if _, err := b.UnlockingScript([][]byte{{1}, {2}}); err == nil {
		t.Error("expected error for two signatures")
	}
	if _, err := b.UnlockingScript([][]byte{{1, 2, 3}}); err != nil {
		t.Errorf("unexpected error for one signature: %v", err)
	}
}

// TestP2PKLockBuilder_ParseRoundTrip tests P2PK build/parse symmetry.
func TestP2PKLockBuilder_ParseRoundTrip(t *testing.T) {
	key, _ := bitcoin.NewPrivateKey()
	script := bitcoin.NewP2PKLockBuilder(key.PubKey()).LockingScript()
	parsed, err := bitcoin.ParseP2PKLockingScript(script)
	if err != nil {
		t.Fatalf("ParseP2PKLockingScript: %v", err)
	}
	if string(parsed.PubKey.Bytes()) != string(key.PubKey().Bytes()) {
		t.Error("parsed pubkey does not match original")
	}
}

// TestP2SHLockBuilder_IsP2SHLockingScript tests the exact-shape P2SH
// detector the interpreter relies on.
func TestP2SHLockBuilder_IsP2SHLockingScript(t *testing.T) {
	h160 := bitcoin.ComputeHash160([]byte("redeem script"))
	p2sh := bitcoin.NewP2SHLockBuilder(h160).LockingScript()
	if !bitcoin.IsP2SHLockingScript(p2sh) {
		t.Error("IsP2SHLockingScript(p2sh) = false, want true")
	}
	p2pkh := bitcoin.NewP2PKHLockBuilder(h160).LockingScript()
	if bitcoin.IsP2SHLockingScript(p2pkh) {
		t.Error("IsP2SHLockingScript(p2pkh) = true, want false")
	}
}

// TestP2SHUnlockBuilder_WrapsInnerScript tests that the P2SH unlock builder
// appends the redeem script after the inner unlock builder's output.
func TestP2SHUnlockBuilder_WrapsInnerScript(t *testing.T) {
	redeem := bitcoin.NewScriptBuilder().AddOp(bitcoin.OP_1).AddOp(bitcoin.OP_CHECKMULTISIG).Script()
	inner := bitcoin.NewP2MSUnlockBuilder(1)
	wrapper := bitcoin.NewP2SHUnlockBuilder(inner, redeem)

	sig := make([]byte, 71)
	script, err := wrapper.UnlockingScript([][]byte{sig})
	if err != nil {
		t.Fatalf("UnlockingScript: %v", err)
	}
	chunks, err := script.Chunks()
	if err != nil {
		t.Fatalf("Chunks: %v", err)
	}
	if len(chunks) != 3 { // OP_0, sig, redeem script push
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if string(chunks[2].Data) != string(redeem.Bytes()) {
		t.Error("last chunk is not the redeem script")
	}
}

// TestP2MSLockBuilder_ParseRoundTrip tests that a 2-of-3 multisig locking
// script parses back its m and public keys.
func TestP2MSLockBuilder_ParseRoundTrip(t *testing.T) {
	pubs := make([]*bitcoin.PublicKey, 3)
	for i := range pubs {
		k, _ := bitcoin.NewPrivateKey()
		pubs[i] = k.PubKey()
	}
	script := bitcoin.NewP2MSLockBuilder(2, pubs).LockingScript()
	parsed, err := bitcoin.ParseP2MSLockingScript(script)
	if err != nil {
		t.Fatalf("ParseP2MSLockingScript: %v", err)
	}
	if parsed.M != 2 {
		t.Errorf("M = %d, want 2", parsed.M)
	}
	if len(parsed.PubKeys) != 3 {
		t.Fatalf("len(PubKeys) = %d, want 3", len(parsed.PubKeys))
	}
	for i, pk := range parsed.PubKeys {
		if string(pk.Bytes()) != string(pubs[i].Bytes()) {
			t.Errorf("pubkey[%d] does not match original", i)
		}
	}
}

// TestP2MSUnlockBuilder_RequiresExactlyMSignatures tests the arity check
// against the builder's configured M.
func TestP2MSUnlockBuilder_RequiresExactlyMSignatures(t *testing.T) {
	b := bitcoin.NewP2MSUnlockBuilder(2)
	if _, err := b.UnlockingScript([][]byte{{1}}); err == nil {
		t.Error("expected error for one signature when M=2")
	}
	if _, err := b.UnlockingScript([][]byte{{1}, {2}, {3}}); err == nil {
		t.Error("expected error for three signatures when M=2")
	}
}

// TestDataLockBuilder_ParseRoundTrip tests OP_RETURN field round tripping.
func TestDataLockBuilder_ParseRoundTrip(t *testing.T) {
	fields := [][]byte{[]byte("hello"), []byte("world")}
	script := bitcoin.NewDataLockBuilder(fields...).LockingScript()
	parsed, err := bitcoin.ParseDataLockingScript(script)
	if err != nil {
		t.Fatalf("ParseDataLockingScript: %v", err)
	}
	if len(parsed.Fields) != 2 || string(parsed.Fields[0]) != "hello" || string(parsed.Fields[1]) != "world" {
		t.Errorf("parsed fields = %v, want [hello world]", parsed.Fields)
	}
}

// TestDataLockBuilder_UnspendableShape tests that the script begins with
// OP_FALSE OP_RETURN, the canonical provably-unspendable prefix.
func TestDataLockBuilder_UnspendableShape(t *testing.T) {
	script := bitcoin.NewDataLockBuilder([]byte("x")).LockingScript()
	if script[0] != byte(bitcoin.OP_FALSE) || script[1] != byte(bitcoin.OP_RETURN) {
		t.Errorf("script does not start with OP_FALSE OP_RETURN: %x", []byte(script))
	}
}
