package bitcoin

import (
	"bytes"
	"encoding/binary"
)

// MaxMoney is the maximum satoshi value a single output (or the
// transaction's total output) may carry.
const MaxMoney = 21_000_000 * 100_000_000

// DefaultSequence is the sequence number SpendFromOutput uses unless the
// caller overrides it.
const DefaultSequence uint32 = 0xFFFFFFFF

// MaxLockTimeSequence enables the transaction's nLockTime while still
// disabling replace-by-fee-style re-spending of the input that carries it.
const MaxLockTimeSequence uint32 = 0xFFFFFFFE

// OutPoint references a previous transaction's output.
type OutPoint struct {
	Hash  Hash256
	Index uint32
}

// String renders the outpoint as "txid:index".
func (op OutPoint) String() string {
	return op.Hash.String() + ":" + uitoa(uint64(op.Index))
}

// IsNull reports whether this is the null outpoint coinbase inputs use.
func (op OutPoint) IsNull() bool {
	return op.Hash.IsZero() && op.Index == 0xffffffff
}

func uitoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// TxInput is one transaction input. UTXO is the optional associated
// previous output (value + locking script) — required for signing via the
// builder (C9), unused by plain serialization/deserialization (spec.md
// §4.8).
type TxInput struct {
	PreviousOutput  OutPoint
	UnlockingScript Script
	Sequence        uint32

	UTXO          *UTXO
	UnlockBuilder UnlockBuilder
}

// TxOutput is one transaction output.
type TxOutput struct {
	Value         uint64
	LockingScript Script
}

// Transaction is a pre-Genesis-style Bitcoin transaction: version, inputs,
// outputs, and lock time. SegWit is out of scope (spec.md Non-goals) — there
// is no witness data anywhere in this model.
type Transaction struct {
	Version  uint32
	Inputs   []TxInput
	Outputs  []TxOutput
	LockTime uint32

	hash *Hash256
}

// NewTransaction builds a transaction from explicit parts. Most callers
// should prefer the zero value plus TransactionBuilder.
func NewTransaction(version uint32, inputs []TxInput, outputs []TxOutput, lockTime uint32) *Transaction {
	return &Transaction{Version: version, Inputs: inputs, Outputs: outputs, LockTime: lockTime}
}

// MarkDirty invalidates the cached txid. Callers that mutate Inputs/Outputs
// directly rather than through TransactionBuilder must call this themselves.
func (tx *Transaction) MarkDirty() {
	tx.hash = nil
}

// Serialize encodes the transaction in canonical Bitcoin wire format:
// version ∥ varint(len(inputs)) ∥ inputs ∥ varint(len(outputs)) ∥ outputs ∥
// lockTime, all little-endian, scripts varint-length-prefixed.
func (tx *Transaction) Serialize() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, tx.Version); err != nil {
		return nil, err
	}

	buf.Write(EncodeVarInt(uint64(len(tx.Inputs))))
	for _, in := range tx.Inputs {
		writeReversed(&buf, in.PreviousOutput.Hash.Bytes())
		if err := binary.Write(&buf, binary.LittleEndian, in.PreviousOutput.Index); err != nil {
			return nil, err
		}
		buf.Write(EncodeVarInt(uint64(len(in.UnlockingScript))))
		buf.Write(in.UnlockingScript)
		if err := binary.Write(&buf, binary.LittleEndian, in.Sequence); err != nil {
			return nil, err
		}
	}

	buf.Write(EncodeVarInt(uint64(len(tx.Outputs))))
	for _, out := range tx.Outputs {
		if err := binary.Write(&buf, binary.LittleEndian, out.Value); err != nil {
			return nil, err
		}
		buf.Write(EncodeVarInt(uint64(len(out.LockingScript))))
		buf.Write(out.LockingScript)
	}

	if err := binary.Write(&buf, binary.LittleEndian, tx.LockTime); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeReversed(buf *bytes.Buffer, b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		buf.WriteByte(b[i])
	}
}

// DeserializeTransaction parses a transaction from canonical wire format.
func DeserializeTransaction(data []byte) (*Transaction, error) {
	if len(data) < 4 {
		return nil, NewError(ErrTruncatedScript, "transaction shorter than version field")
	}
	tx := &Transaction{}
	offset := 0

	tx.Version = binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4

	inputCount, n, err := DecodeVarInt(data[offset:])
	if err != nil {
		return nil, NewError(ErrTruncatedScript, "input count: "+err.Error())
	}
	offset += n

	tx.Inputs = make([]TxInput, inputCount)
	for i := range tx.Inputs {
		if len(data[offset:]) < 32+4 {
			return nil, NewError(ErrTruncatedScript, "truncated input outpoint")
		}
		for j := 0; j < 32; j++ {
			tx.Inputs[i].PreviousOutput.Hash[j] = data[offset+31-j]
		}
		offset += 32
		tx.Inputs[i].PreviousOutput.Index = binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4

		scriptLen, n, err := DecodeVarInt(data[offset:])
		if err != nil {
			return nil, NewError(ErrTruncatedScript, "input script length: "+err.Error())
		}
		offset += n
		if uint64(len(data[offset:])) < scriptLen {
			return nil, NewError(ErrTruncatedScript, "truncated input script")
		}
		tx.Inputs[i].UnlockingScript = append(Script(nil), data[offset:offset+int(scriptLen)]...)
		offset += int(scriptLen)

		if len(data[offset:]) < 4 {
			return nil, NewError(ErrTruncatedScript, "truncated input sequence")
		}
		tx.Inputs[i].Sequence = binary.LittleEndian.Uint32(data[offset : offset+4])
		offset += 4
	}

	outputCount, n, err := DecodeVarInt(data[offset:])
	if err != nil {
		return nil, NewError(ErrTruncatedScript, "output count: "+err.Error())
	}
	offset += n

	tx.Outputs = make([]TxOutput, outputCount)
	for i := range tx.Outputs {
		if len(data[offset:]) < 8 {
			return nil, NewError(ErrTruncatedScript, "truncated output value")
		}
		tx.Outputs[i].Value = binary.LittleEndian.Uint64(data[offset : offset+8])
		offset += 8

		scriptLen, n, err := DecodeVarInt(data[offset:])
		if err != nil {
			return nil, NewError(ErrTruncatedScript, "output script length: "+err.Error())
		}
		offset += n
		if uint64(len(data[offset:])) < scriptLen {
			return nil, NewError(ErrTruncatedScript, "truncated output script")
		}
		tx.Outputs[i].LockingScript = append(Script(nil), data[offset:offset+int(scriptLen)]...)
		offset += int(scriptLen)
	}

	if len(data[offset:]) < 4 {
		return nil, NewError(ErrTruncatedScript, "truncated locktime")
	}
	tx.LockTime = binary.LittleEndian.Uint32(data[offset : offset+4])

	return tx, nil
}

// Hash returns the transaction ID: the byte-reversed double-SHA256 of the
// serialized transaction, computed lazily and cached until MarkDirty.
func (tx *Transaction) Hash() Hash256 {
	if tx.hash == nil {
		raw, err := tx.Serialize()
		if err != nil {
			zero := ZeroHash
			return zero
		}
		h := Hash256Raw(raw)
		tx.hash = &h
	}
	return *tx.hash
}

// IsCoinbase reports whether this transaction has the single null-outpoint
// input a coinbase transaction carries.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].PreviousOutput.IsNull()
}

// TotalOutput sums every output's value.
func (tx *Transaction) TotalOutput() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// Validate runs the sanity checks every transaction must satisfy regardless
// of how it was built: at least one input and output, no duplicate
// outpoints, and no output (or output sum) exceeding MaxMoney.
func (tx *Transaction) Validate() error {
	if len(tx.Inputs) == 0 {
		return NewError(ErrInsufficientFunds, "transaction has no inputs")
	}
	if len(tx.Outputs) == 0 {
		return NewError(ErrExcessiveValue, "transaction has no outputs")
	}

	seen := make(map[OutPoint]bool, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if seen[in.PreviousOutput] {
			return NewError(ErrExcessiveValue, "transaction has duplicate inputs")
		}
		seen[in.PreviousOutput] = true
	}

	var total uint64
	for _, out := range tx.Outputs {
		if out.Value > MaxMoney {
			return NewError(ErrExcessiveValue, "output value exceeds MaxMoney")
		}
		total += out.Value
	}
	if total > MaxMoney {
		return NewError(ErrExcessiveValue, "total output value exceeds MaxMoney")
	}
	return nil
}
