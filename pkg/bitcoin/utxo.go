package bitcoin

// UTXO is the opaque association a TransactionBuilder input carries: the
// previous output's value and locking script, needed to compute a signature
// hash but not part of the transaction's own wire encoding (spec.md §4.8).
type UTXO struct {
	txHash        Hash256
	outputIndex   uint32
	value         uint64
	lockingScript Script
}

// NewUTXO associates a previous output's coordinates with its value and
// locking script.
func NewUTXO(txHash Hash256, outputIndex uint32, value uint64, lockingScript Script) *UTXO {
	script := make(Script, len(lockingScript))
	copy(script, lockingScript)
	return &UTXO{txHash: txHash, outputIndex: outputIndex, value: value, lockingScript: script}
}

// TxHash returns the referenced transaction's id.
func (u *UTXO) TxHash() Hash256 { return u.txHash }

// OutputIndex returns the referenced output's index within that transaction.
func (u *UTXO) OutputIndex() uint32 { return u.outputIndex }

// Value returns the output's value in satoshis.
func (u *UTXO) Value() uint64 { return u.value }

// LockingScript returns the output's locking script — the subscript used
// when signing an input that spends this UTXO.
func (u *UTXO) LockingScript() Script { return u.lockingScript }

// OutPoint returns the {txHash, outputIndex} pair as an OutPoint.
func (u *UTXO) OutPoint() OutPoint {
	return OutPoint{Hash: u.txHash, Index: u.outputIndex}
}

// UTXOSet is an address-book of known unspent outputs, used by callers to
// assemble candidate inputs before handing them to the builder via
// SpendFromOutput. It plays no role in consensus; it is bookkeeping.
type UTXOSet struct {
	utxos map[OutPoint]*UTXO
}

// NewUTXOSet returns an empty set.
func NewUTXOSet() *UTXOSet {
	return &UTXOSet{utxos: make(map[OutPoint]*UTXO)}
}

// Add inserts or replaces a UTXO.
func (s *UTXOSet) Add(utxo *UTXO) {
	s.utxos[utxo.OutPoint()] = utxo
}

// Remove deletes the UTXO at (txHash, outputIndex), reporting whether it was
// present.
func (s *UTXOSet) Remove(txHash Hash256, outputIndex uint32) bool {
	key := OutPoint{Hash: txHash, Index: outputIndex}
	if _, ok := s.utxos[key]; !ok {
		return false
	}
	delete(s.utxos, key)
	return true
}

// Find looks up a UTXO by its coordinates.
func (s *UTXOSet) Find(txHash Hash256, outputIndex uint32) (*UTXO, bool) {
	utxo, ok := s.utxos[OutPoint{Hash: txHash, Index: outputIndex}]
	return utxo, ok
}

// Size returns the number of UTXOs held.
func (s *UTXOSet) Size() int {
	return len(s.utxos)
}

// TotalValue sums the value of every UTXO in the set.
func (s *UTXOSet) TotalValue() uint64 {
	var total uint64
	for _, u := range s.utxos {
		total += u.value
	}
	return total
}

// All returns every UTXO in the set, in unspecified order.
func (s *UTXOSet) All() []*UTXO {
	out := make([]*UTXO, 0, len(s.utxos))
	for _, u := range s.utxos {
		out = append(out, u)
	}
	return out
}

// Clear empties the set.
func (s *UTXOSet) Clear() {
	s.utxos = make(map[OutPoint]*UTXO)
}
