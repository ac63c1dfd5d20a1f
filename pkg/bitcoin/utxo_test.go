package bitcoin_test

import (
	"testing"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

// TestUTXO_Accessors tests that a constructed UTXO reports back the fields
// it was built from, including a defensive copy of the locking script.
func TestUTXO_Accessors(t *testing.T) {
	hash := bitcoin.Hash256Raw([]byte("utxo accessors"))
	script := bitcoin.NewScriptBuilder().AddOp(bitcoin.OP_1).Script()
	u := bitcoin.NewUTXO(hash, 3, 4500, script)

	if u.TxHash() != hash {
		t.Error("TxHash() mismatch")
	}
	if u.OutputIndex() != 3 {
		t.Errorf("OutputIndex() = %d, want 3", u.OutputIndex())
	}
	if u.Value() != 4500 {
		t.Errorf("Value() = %d, want 4500", u.Value())
	}
	if string(u.LockingScript().Bytes()) != string(script.Bytes()) {
		t.Error("LockingScript() does not match the constructor argument")
	}

	script[0] = byte(bitcoin.OP_2)
	if string(u.LockingScript().Bytes()) == string(script.Bytes()) {
		t.Error("mutating the original script slice leaked into the UTXO's copy")
	}
}

// TestUTXO_OutPoint tests that OutPoint() reassembles the txHash/index pair.
func TestUTXO_OutPoint(t *testing.T) {
	hash := bitcoin.Hash256Raw([]byte("outpoint"))
	u := bitcoin.NewUTXO(hash, 7, 1000, nil)
	op := u.OutPoint()
	if op.Hash != hash || op.Index != 7 {
		t.Errorf("OutPoint() = %+v, want {Hash: %x, Index: 7}", op, hash.Bytes())
	}
}

// TestUTXOSet_AddFindRemove tests the basic bookkeeping operations.
func TestUTXOSet_AddFindRemove(t *testing.T) {
	set := bitcoin.NewUTXOSet()
	hash := bitcoin.Hash256Raw([]byte("set test"))
	u := bitcoin.NewUTXO(hash, 0, 1000, nil)
	set.Add(u)

	found, ok := set.Find(hash, 0)
	if !ok || found != u {
		t.Fatal("Find did not return the added UTXO")
	}
	if set.Size() != 1 {
		t.Errorf("Size() = %d, want 1", set.Size())
	}

	if !set.Remove(hash, 0) {
		t.Error("Remove reported false for a present UTXO")
	}
	if set.Remove(hash, 0) {
		t.Error("Remove reported true for an already-removed UTXO")
	}
	if _, ok := set.Find(hash, 0); ok {
		t.Error("Find still reports the UTXO present after removal")
	}
}

// TestUTXOSet_TotalValueAndAll tests aggregate accessors across several
// entries.
func TestUTXOSet_TotalValueAndAll(t *testing.T) {
	set := bitcoin.NewUTXOSet()
	for i := uint32(0); i < 3; i++ {
		hash := bitcoin.Hash256Raw([]byte{byte(i)})
		set.Add(bitcoin.NewUTXO(hash, i, uint64(1000*(i+1)), nil))
	}
	if set.TotalValue() != 1000+2000+3000 {
		t.Errorf("TotalValue() = %d, want 6000", set.TotalValue())
	}
	if len(set.All()) != 3 {
		t.Errorf("len(All()) = %d, want 3", len(set.All()))
	}

	set.Clear()
	if set.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", set.Size())
	}
	if set.TotalValue() != 0 {
		t.Errorf("TotalValue() after Clear() = %d, want 0", set.TotalValue())
	}
}
