package bitcoin

// DefaultFeePerKb is the target fee density (satoshis per 1000 bytes) a
// builder uses unless overridden with WithFeePerKb.
const DefaultFeePerKb = 1000

// DefaultDustThreshold is the minimum change output value a builder will
// keep; anything smaller is dropped rather than paid out as dust.
const DefaultDustThreshold = 546

// changeOutput tracks the designated change output's position once it has
// been added, so the fee loop can resize or remove it.
type changeOutput struct {
	index       int
	lockBuilder LockBuilder
}

// TransactionBuilder assembles a Transaction incrementally: inputs with
// their spending keys/templates, outputs, an optional change destination,
// and a target fee rate, then computes the change value (Build) and signs
// inputs one at a time (SignInput/SignMultisigInput) (spec.md §4.9).
type TransactionBuilder struct {
	tx            *Transaction
	feePerKb      uint64
	dustThreshold uint64
	changeOut     *changeOutput
}

// NewTransactionBuilder returns an empty builder with version 1, no
// lock time, and the library's default fee rate and dust threshold.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx:            &Transaction{Version: 1},
		feePerKb:      DefaultFeePerKb,
		dustThreshold: DefaultDustThreshold,
	}
}

// WithFeePerKb overrides the target fee density.
func (b *TransactionBuilder) WithFeePerKb(rate uint64) *TransactionBuilder {
	b.feePerKb = rate
	return b
}

// WithDustThreshold overrides the minimum change value kept.
func (b *TransactionBuilder) WithDustThreshold(threshold uint64) *TransactionBuilder {
	b.dustThreshold = threshold
	return b
}

// WithLockTime sets the transaction's nLockTime.
func (b *TransactionBuilder) WithLockTime(lockTime uint32) *TransactionBuilder {
	b.tx.LockTime = lockTime
	b.tx.MarkDirty()
	return b
}

// SpendFromOutput appends an input referencing utxo, to be unlocked later
// by unlockBuilder once SignInput runs. sequence of 0 means "use the
// library default" (DefaultSequence).
func (b *TransactionBuilder) SpendFromOutput(utxo *UTXO, sequence uint32, unlockBuilder UnlockBuilder) *TransactionBuilder {
	if sequence == 0 {
		sequence = DefaultSequence
	}
	b.tx.Inputs = append(b.tx.Inputs, TxInput{
		PreviousOutput: utxo.OutPoint(),
		Sequence:       sequence,
		UTXO:           utxo,
		UnlockBuilder:  unlockBuilder,
	})
	b.tx.MarkDirty()
	return b
}

// SpendTo appends a fixed-value output built from lockBuilder.
func (b *TransactionBuilder) SpendTo(value uint64, lockBuilder LockBuilder) (*TransactionBuilder, error) {
	if value > MaxMoney {
		return nil, NewError(ErrExcessiveValue, "output value exceeds MaxMoney")
	}
	b.tx.Outputs = append(b.tx.Outputs, TxOutput{Value: value, LockingScript: lockBuilder.LockingScript()})
	b.tx.MarkDirty()
	return b, nil
}

// SendChangeTo designates a change output built from lockBuilder. The
// builder adds, resizes, or removes this output as needed to hit the
// target fee; calling it again replaces the previous designation.
func (b *TransactionBuilder) SendChangeTo(lockBuilder LockBuilder) *TransactionBuilder {
	b.changeOut = &changeOutput{index: -1, lockBuilder: lockBuilder}
	return b
}

// Inputs returns a copy of the builder's current inputs.
func (b *TransactionBuilder) Inputs() []TxInput { return append([]TxInput(nil), b.tx.Inputs...) }

// Outputs returns a copy of the builder's current outputs.
func (b *TransactionBuilder) Outputs() []TxOutput { return append([]TxOutput(nil), b.tx.Outputs...) }

// Clone returns a deep-enough copy of the builder for speculative fee
// iteration or alternate-fee-rate comparisons; inputs/outputs are copied,
// UTXOs and unlock builders are shared by reference (they are immutable
// from the builder's perspective).
func (b *TransactionBuilder) Clone() *TransactionBuilder {
	clone := &TransactionBuilder{
		tx:            &Transaction{Version: b.tx.Version, LockTime: b.tx.LockTime},
		feePerKb:      b.feePerKb,
		dustThreshold: b.dustThreshold,
	}
	clone.tx.Inputs = append([]TxInput(nil), b.tx.Inputs...)
	clone.tx.Outputs = append([]TxOutput(nil), b.tx.Outputs...)
	if b.changeOut != nil {
		co := *b.changeOut
		clone.changeOut = &co
	}
	return clone
}

// inputSum requires every input to carry an associated UTXO value.
func (b *TransactionBuilder) inputSum() (uint64, error) {
	var total uint64
	for _, in := range b.tx.Inputs {
		if in.UTXO == nil {
			return 0, NewError(ErrMissingUTXOValue, "input has no associated UTXO value")
		}
		total += in.UTXO.Value()
	}
	return total, nil
}

func (b *TransactionBuilder) nonChangeOutputSum() uint64 {
	var total uint64
	for i, out := range b.tx.Outputs {
		if b.changeOut != nil && b.changeOut.index == i {
			continue
		}
		total += out.Value
	}
	return total
}

// estimatedUnlockSize returns the worst-case unlocking script size for an
// input's stored unlock builder, used by the fee loop before any signature
// has actually been produced.
func estimatedUnlockSize(in TxInput) int {
	if in.UnlockBuilder == nil {
		return 107 // fall back to the common P2PKH bound
	}
	return in.UnlockBuilder.EstimateSize()
}

// EstimatedSize returns the transaction's serialized size using each
// input's worst-case unlocking script size in place of its real (possibly
// not-yet-computed) one.
func (b *TransactionBuilder) EstimatedSize() (int, error) {
	probe := &Transaction{Version: b.tx.Version, LockTime: b.tx.LockTime}
	probe.Outputs = b.tx.Outputs
	probe.Inputs = make([]TxInput, len(b.tx.Inputs))
	for i, in := range b.tx.Inputs {
		probe.Inputs[i] = TxInput{
			PreviousOutput:  in.PreviousOutput,
			Sequence:        in.Sequence,
			UnlockingScript: make(Script, estimatedUnlockSize(in)),
		}
	}
	raw, err := probe.Serialize()
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// EstimatedFee returns ceil(EstimatedSize * feePerKb / 1000).
func (b *TransactionBuilder) EstimatedFee() (uint64, error) {
	size, err := b.EstimatedSize()
	if err != nil {
		return 0, err
	}
	return feeForSize(uint64(size), b.feePerKb), nil
}

func feeForSize(size, ratePerKb uint64) uint64 {
	return (size*ratePerKb + 999) / 1000
}

// Build finalizes the change output (adding, resizing, or dropping it to
// hit the target fee) and returns the resulting transaction. It does not
// sign any input — call SignInput afterward for each input that needs one.
func (b *TransactionBuilder) Build() (*Transaction, error) {
	inSum, err := b.inputSum()
	if err != nil {
		return nil, err
	}
	outSum := b.nonChangeOutputSum()

	if b.changeOut == nil {
		if inSum < outSum {
			return nil, NewError(ErrInsufficientFunds, "inputs do not cover outputs")
		}
		return b.tx, nil
	}

	if b.changeOut.index < 0 {
		b.tx.Outputs = append(b.tx.Outputs, TxOutput{LockingScript: b.changeOut.lockBuilder.LockingScript()})
		b.changeOut.index = len(b.tx.Outputs) - 1
		b.tx.MarkDirty()
	}

	for {
		size, err := b.EstimatedSize()
		if err != nil {
			return nil, err
		}
		fee := feeForSize(uint64(size), b.feePerKb)

		if inSum < outSum+fee || inSum-outSum-fee < b.dustThreshold {
			b.removeChangeOutput()
			noChangeSize, err := b.EstimatedSize()
			if err != nil {
				return nil, err
			}
			if inSum < outSum+feeForSize(uint64(noChangeSize), b.feePerKb) {
				return nil, NewError(ErrInsufficientFunds, "inputs do not cover outputs plus fee after dropping dust change")
			}
			return b.tx, nil
		}
		change := inSum - outSum - fee

		b.tx.Outputs[b.changeOut.index].Value = change
		b.tx.MarkDirty()

		resized, err := b.EstimatedSize()
		if err != nil {
			return nil, err
		}
		if resized == size {
			return b.tx, nil
		}
	}
}

func (b *TransactionBuilder) removeChangeOutput() {
	idx := b.changeOut.index
	b.tx.Outputs = append(b.tx.Outputs[:idx], b.tx.Outputs[idx+1:]...)
	b.changeOut = nil
	b.tx.MarkDirty()
}

// signingSubscript returns the scriptCode a signature for this input
// commits to: the redeem script for a P2SH input (what the interpreter
// actually evaluates as scriptCode once it unwraps the P2SH locking
// script), or the UTXO's own locking script otherwise.
func signingSubscript(in *TxInput) Script {
	if p2sh, ok := in.UnlockBuilder.(*P2SHUnlockBuilder); ok {
		return p2sh.RedeemScript.RemoveCodeSeparators()
	}
	return in.UTXO.LockingScript().RemoveCodeSeparators()
}

// SignInput computes the signature(s) for input index using key (and the
// input's stored UTXO/UnlockBuilder), then installs the resulting
// unlocking script. Resigning an already-signed input overwrites it.
func (b *TransactionBuilder) SignInput(index int, key *PrivateKey, sighashType SighashType) error {
	if index < 0 || index >= len(b.tx.Inputs) {
		return NewError(ErrMissingUnlockBuilder, "input index out of range")
	}
	in := &b.tx.Inputs[index]
	if in.UTXO == nil {
		return NewError(ErrMissingUTXOValue, "input has no associated UTXO")
	}
	if in.UnlockBuilder == nil {
		return NewError(ErrMissingUnlockBuilder, "input has no unlock builder")
	}

	subscript := signingSubscript(in)
	digest, err := SighashPreimage(b.tx, index, subscript, in.UTXO.Value(), sighashType)
	if err != nil {
		return err
	}
	sig := key.Sign(digest)
	sigWithType := append(sig.Serialize(), byte(sighashType))

	unlocking, err := in.UnlockBuilder.UnlockingScript([][]byte{sigWithType})
	if err != nil {
		return err
	}
	in.UnlockingScript = unlocking
	b.tx.MarkDirty()
	return nil
}

// SignMultisigInput signs input index once per key in keys (in the order
// the P2MS/P2SH-multisig template expects its signatures) and installs the
// resulting unlocking script. Use this instead of SignInput whenever the
// input's unlock builder needs more than one signature.
func (b *TransactionBuilder) SignMultisigInput(index int, keys []*PrivateKey, sighashType SighashType) error {
	if index < 0 || index >= len(b.tx.Inputs) {
		return NewError(ErrMissingUnlockBuilder, "input index out of range")
	}
	in := &b.tx.Inputs[index]
	if in.UTXO == nil {
		return NewError(ErrMissingUTXOValue, "input has no associated UTXO")
	}
	if in.UnlockBuilder == nil {
		return NewError(ErrMissingUnlockBuilder, "input has no unlock builder")
	}

	subscript := signingSubscript(in)
	digest, err := SighashPreimage(b.tx, index, subscript, in.UTXO.Value(), sighashType)
	if err != nil {
		return err
	}

	sigs := make([][]byte, len(keys))
	for i, key := range keys {
		sig := key.Sign(digest)
		sigs[i] = append(sig.Serialize(), byte(sighashType))
	}

	unlocking, err := in.UnlockBuilder.UnlockingScript(sigs)
	if err != nil {
		return err
	}
	in.UnlockingScript = unlocking
	b.tx.MarkDirty()
	return nil
}
