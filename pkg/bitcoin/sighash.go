package bitcoin

import "encoding/binary"

// SighashType is the mode+flags byte appended after a signature and folded
// into the preimage (spec.md §4.6).
type SighashType uint32

const (
	SighashAll    SighashType = 1
	SighashNone   SighashType = 2
	SighashSingle SighashType = 3

	SighashAnyoneCanPay SighashType = 0x80
	SighashForkID       SighashType = 0x40

	sighashBaseMask SighashType = 0x1f
)

// Base returns the ALL/NONE/SINGLE mode with the ANYONECANPAY/FORKID bits
// masked off.
func (t SighashType) Base() SighashType { return t & sighashBaseMask }

// HasAnyoneCanPay reports whether the ANYONECANPAY bit is set.
func (t SighashType) HasAnyoneCanPay() bool { return t&SighashAnyoneCanPay != 0 }

// HasForkID reports whether the FORKID bit is set.
func (t SighashType) HasForkID() bool { return t&SighashForkID != 0 }

// SighashPreimage computes the 32-byte digest to be ECDSA-signed for
// spending input inputIndex of tx, whose previous output carries
// subscript and prevValue. subscript must already be the codeseparator-
// truncated previous locking script (spec.md §4.6 step 2). The FORKID bit
// of sighashType selects between the legacy and BIP143-style preimage.
func SighashPreimage(tx *Transaction, inputIndex int, subscript Script, prevValue uint64, sighashType SighashType) (Hash256, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return Hash256{}, NewError(ErrInvalidSighashType, "input index out of range")
	}
	if sighashType.HasForkID() {
		return forkIDPreimage(tx, inputIndex, subscript, prevValue, sighashType), nil
	}
	return legacyPreimage(tx, inputIndex, subscript, sighashType)
}

// legacySingleBugHash is the historical "return 0x00..01" quirk: when mode
// is SINGLE and the input index has no matching output, implementations
// must reproduce this exact 32-byte value rather than hash anything
// (spec.md §4.6 step 3).
var legacySingleBugHash = func() Hash256 {
	var h Hash256
	h[0] = 0x01
	return h
}()

func legacyPreimage(tx *Transaction, inputIndex int, subscript Script, sighashType SighashType) (Hash256, error) {
	mode := sighashType.Base()
	if mode == SighashSingle && inputIndex >= len(tx.Outputs) {
		return legacySingleBugHash, nil
	}

	inputs := make([]TxInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = TxInput{
			PreviousOutput: in.PreviousOutput,
			Sequence:       in.Sequence,
		}
		if i == inputIndex {
			inputs[i].UnlockingScript = subscript.RemoveCodeSeparators()
		}
		if mode == SighashNone || mode == SighashSingle {
			if i != inputIndex {
				inputs[i].Sequence = 0
			}
		}
	}

	outputs := tx.Outputs
	switch mode {
	case SighashNone:
		outputs = nil
	case SighashSingle:
		trimmed := make([]TxOutput, inputIndex+1)
		for i := range trimmed {
			trimmed[i] = TxOutput{Value: 0xFFFFFFFFFFFFFFFF, LockingScript: nil}
		}
		trimmed[inputIndex] = tx.Outputs[inputIndex]
		outputs = trimmed
	}

	if sighashType.HasAnyoneCanPay() {
		inputs = []TxInput{inputs[inputIndex]}
	}

	modified := &Transaction{
		Version:  tx.Version,
		Inputs:   inputs,
		Outputs:  outputs,
		LockTime: tx.LockTime,
	}
	serialized, err := modified.Serialize()
	if err != nil {
		return Hash256{}, err
	}

	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(sighashType))
	serialized = append(serialized, typeBytes[:]...)

	return Hash256Raw(serialized), nil
}

// forkIDPreimage builds the BIP143-style preimage: nVersion ∥ hashPrevouts ∥
// hashSequence ∥ outpoint ∥ scriptCode ∥ value ∥ sequence ∥ hashOutputs ∥
// nLocktime ∥ sighashType.
func forkIDPreimage(tx *Transaction, inputIndex int, scriptCode Script, prevValue uint64, sighashType SighashType) Hash256 {
	mode := sighashType.Base()
	anyoneCanPay := sighashType.HasAnyoneCanPay()

	hashPrevouts := ZeroHash
	if !anyoneCanPay {
		var buf []byte
		for _, in := range tx.Inputs {
			buf = append(buf, reversedBytes(in.PreviousOutput.Hash.Bytes())...)
			var idx [4]byte
			binary.LittleEndian.PutUint32(idx[:], in.PreviousOutput.Index)
			buf = append(buf, idx[:]...)
		}
		hashPrevouts = Hash256Raw(buf)
	}

	hashSequence := ZeroHash
	if !anyoneCanPay && mode != SighashSingle && mode != SighashNone {
		var buf []byte
		for _, in := range tx.Inputs {
			var seq [4]byte
			binary.LittleEndian.PutUint32(seq[:], in.Sequence)
			buf = append(buf, seq[:]...)
		}
		hashSequence = Hash256Raw(buf)
	}

	hashOutputs := ZeroHash
	switch {
	case mode != SighashSingle && mode != SighashNone:
		var buf []byte
		for _, out := range tx.Outputs {
			buf = append(buf, serializeOutput(out)...)
		}
		hashOutputs = Hash256Raw(buf)
	case mode == SighashSingle && inputIndex < len(tx.Outputs):
		hashOutputs = Hash256Raw(serializeOutput(tx.Outputs[inputIndex]))
	}

	var buf []byte
	var versionBytes [4]byte
	binary.LittleEndian.PutUint32(versionBytes[:], tx.Version)
	buf = append(buf, versionBytes[:]...)
	buf = append(buf, hashPrevouts.Bytes()...)
	buf = append(buf, hashSequence.Bytes()...)

	in := tx.Inputs[inputIndex]
	buf = append(buf, reversedBytes(in.PreviousOutput.Hash.Bytes())...)
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], in.PreviousOutput.Index)
	buf = append(buf, idx[:]...)

	buf = append(buf, EncodeVarInt(uint64(len(scriptCode)))...)
	buf = append(buf, scriptCode...)

	var value [8]byte
	binary.LittleEndian.PutUint64(value[:], prevValue)
	buf = append(buf, value[:]...)

	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	buf = append(buf, seq[:]...)

	buf = append(buf, hashOutputs.Bytes()...)

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	buf = append(buf, lockTime[:]...)

	var typeBytes [4]byte
	binary.LittleEndian.PutUint32(typeBytes[:], uint32(sighashType))
	buf = append(buf, typeBytes[:]...)

	return Hash256Raw(buf)
}

func serializeOutput(out TxOutput) []byte {
	var buf []byte
	var value [8]byte
	binary.LittleEndian.PutUint64(value[:], out.Value)
	buf = append(buf, value[:]...)
	buf = append(buf, EncodeVarInt(uint64(len(out.LockingScript)))...)
	buf = append(buf, out.LockingScript...)
	return buf
}

func reversedBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
