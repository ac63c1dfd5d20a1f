package bitcoin

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
)

// ExecFlag is a bitset of script evaluation flags (spec.md §4.7).
type ExecFlag uint32

const (
	FlagMinimalData ExecFlag = 1 << iota
	FlagLowS
	FlagNullFail
	FlagNullDummy
	FlagCleanStack
	FlagSigPushOnly
	FlagDiscourageUpgradableNops
	FlagForkID
	FlagP2SH
)

// StandardFlags is the flag set a wallet signing and verifying its own
// spends should use by default: LOW_S and NULLFAIL are always desirable,
// P2SH enables BIP16 evaluation, CLEANSTACK only makes sense for the
// top-level script (the interpreter applies it only there regardless).
const StandardFlags = FlagMinimalData | FlagLowS | FlagNullFail | FlagNullDummy | FlagCleanStack | FlagSigPushOnly | FlagP2SH

const (
	maxOpsPerScript  = 201
	maxStackSize     = 1000
	maxMultisigKeys  = 20
)

// SignatureChecker abstracts the transaction context OP_CHECKSIG and
// OP_CHECKMULTISIG need to turn a signature into a pass/fail verdict,
// so the interpreter itself has no dependency on how that context was
// constructed.
type SignatureChecker interface {
	CheckSig(sig []byte, pubKey []byte, scriptCode Script) bool
}

// TransactionSignatureChecker implements SignatureChecker against a real
// spending transaction (spec.md §4.9's signInput uses the same preimage
// machinery through SighashPreimage directly; this is the path the
// interpreter itself exercises during verification).
type TransactionSignatureChecker struct {
	Tx         *Transaction
	InputIndex int
	PrevValue  uint64
	Flags      ExecFlag
}

func (c *TransactionSignatureChecker) CheckSig(sig []byte, pubKeyBytes []byte, scriptCode Script) bool {
	if len(sig) == 0 {
		return false
	}
	hashType := SighashType(sig[len(sig)-1])
	rawSig := sig[:len(sig)-1]

	if c.Flags&FlagForkID != 0 && !hashType.HasForkID() {
		return false
	}
	parsed, err := ParseDERSignature(rawSig)
	if err != nil {
		return false
	}
	if c.Flags&FlagLowS != 0 && !parsed.IsLowS() {
		return false
	}
	pub, err := PublicKeyFromBytes(pubKeyBytes)
	if err != nil {
		return false
	}
	preimage, err := SighashPreimage(c.Tx, c.InputIndex, scriptCode, c.PrevValue, hashType)
	if err != nil {
		return false
	}
	return pub.Verify(preimage, parsed)
}

// Interpreter executes a single script against a stack, per the pre-Genesis
// rules spec.md §4.7 describes.
type Interpreter struct {
	flags   ExecFlag
	checker SignatureChecker

	stack    [][]byte
	altStack [][]byte
	opCount  int
}

func newInterpreter(flags ExecFlag, checker SignatureChecker) *Interpreter {
	return &Interpreter{flags: flags, checker: checker}
}

func (vm *Interpreter) stackDepth() int { return len(vm.stack) + len(vm.altStack) }

func (vm *Interpreter) push(item []byte) error {
	if len(item) > MaxScriptElementSize {
		return NewScriptError(SEPushSize, 0, 0, "pushed element exceeds MAX_SCRIPT_ELEMENT_SIZE")
	}
	vm.stack = append(vm.stack, item)
	if vm.stackDepth() > maxStackSize {
		return NewScriptError(SEStackSize, 0, 0, "combined stack exceeds limit")
	}
	return nil
}

func (vm *Interpreter) pop() ([]byte, error) {
	if len(vm.stack) == 0 {
		return nil, NewScriptError(SEInvalidStackOperation, 0, 0, "pop from empty stack")
	}
	top := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return top, nil
}

func (vm *Interpreter) top(back int) ([]byte, error) {
	if back < 0 || back >= len(vm.stack) {
		return nil, NewScriptError(SEInvalidStackOperation, 0, 0, "stack index out of range")
	}
	return vm.stack[len(vm.stack)-1-back], nil
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{}
}

func (vm *Interpreter) popScriptNum() (ScriptNum, error) {
	b, err := vm.pop()
	if err != nil {
		return 0, err
	}
	n, err := ScriptNumFromBytes(b, defaultScriptNumLen, vm.flags&FlagMinimalData != 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Eval executes script against the interpreter's current main stack,
// leaving the resulting stack in vm.stack and returning only an error.
// Internally, lastCodeSep tracks the index (within this script's own chunk
// sequence) of the most recent OP_CODESEPARATOR, -1 if none yet.
func (vm *Interpreter) Eval(script Script) error {
	chunks, err := script.Chunks()
	if err != nil {
		return err
	}

	type branch struct{ executing, taken bool }
	var branches []branch
	executing := func() bool {
		for _, b := range branches {
			if !b.executing {
				return false
			}
		}
		return true
	}

	lastCodeSep := -1

	for pos, c := range chunks {
		exec := executing()

		if c.IsPush() {
			if !exec {
				continue
			}
			if err := vm.execPush(c); err != nil {
				return err
			}
			continue
		}

		if c.Op.IsDisabled() {
			return NewScriptError(SEDisabledOp, c.Op, pos, "opcode is disabled")
		}

		switch c.Op {
		case OP_IF, OP_NOTIF:
			var cond bool
			if exec {
				vm.opCount++
				item, err := vm.pop()
				if err != nil {
					return err
				}
				cond = IsTrue(item)
				if c.Op == OP_NOTIF {
					cond = !cond
				}
			}
			branches = append(branches, branch{executing: exec && cond, taken: cond})
			continue
		case OP_ELSE:
			if len(branches) == 0 {
				return NewScriptError(SEUnbalancedConditional, c.Op, pos, "OP_ELSE without matching OP_IF")
			}
			top := &branches[len(branches)-1]
			top.taken = !top.taken
			top.executing = top.taken
			continue
		case OP_ENDIF:
			if len(branches) == 0 {
				return NewScriptError(SEUnbalancedConditional, c.Op, pos, "OP_ENDIF without matching OP_IF")
			}
			branches = branches[:len(branches)-1]
			continue
		}

		if !exec {
			continue
		}

		vm.opCount++
		if vm.opCount > maxOpsPerScript {
			return NewScriptError(SEOpCount, c.Op, pos, "opcode count exceeds limit")
		}

		if err := vm.execOp(c.Op, pos, &lastCodeSep, script); err != nil {
			return err
		}
	}

	if len(branches) != 0 {
		return NewScriptError(SEUnbalancedConditional, 0, len(chunks), "unbalanced IF/ENDIF at end of script")
	}
	return nil
}

func (vm *Interpreter) execPush(c Chunk) error {
	switch {
	case c.Op == OP_0:
		return vm.push([]byte{})
	case c.Op == OP_1NEGATE:
		return vm.push(ScriptNum(-1).Bytes())
	case c.Op >= OP_1 && c.Op <= OP_16:
		return vm.push(ScriptNum(int(c.Op) - int(OP_1) + 1).Bytes())
	default:
		if vm.flags&FlagMinimalData != 0 && !bytes.Equal(chunkBytes(c), PushData(c.Data)) {
			return NewScriptError(SEMinimalData, c.Op, 0, "pushdata not minimally encoded")
		}
		return vm.push(c.Data)
	}
}

func (vm *Interpreter) execOp(op Opcode, pos int, lastCodeSep *int, script Script) error {
	switch op {
	case OP_NOP:
		return nil
	case OP_NOP1, OP_CHECKLOCKTIMEVERIFY, OP_CHECKSEQUENCEVERIFY, OP_NOP4, OP_NOP5, OP_NOP6, OP_NOP7, OP_NOP8, OP_NOP9, OP_NOP10:
		if vm.flags&FlagDiscourageUpgradableNops != 0 {
			return NewScriptError(SEBadOpcode, op, pos, "upgradable NOP discouraged")
		}
		return nil
	case OP_VER, OP_RESERVED, OP_VERIF, OP_VERNOTIF:
		return NewScriptError(SEBadOpcode, op, pos, "reserved opcode executed")
	case OP_RETURN:
		return NewScriptError(SEOpReturn, op, pos, "OP_RETURN executed")
	case OP_VERIFY:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		if !IsTrue(item) {
			return NewScriptError(SEVerify, op, pos, "OP_VERIFY failed")
		}
		return nil

	case OP_TOALTSTACK:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		vm.altStack = append(vm.altStack, item)
		return nil
	case OP_FROMALTSTACK:
		if len(vm.altStack) == 0 {
			return NewScriptError(SEInvalidStackOperation, op, pos, "alt stack empty")
		}
		item := vm.altStack[len(vm.altStack)-1]
		vm.altStack = vm.altStack[:len(vm.altStack)-1]
		return vm.push(item)
	case OP_2DROP:
		if _, err := vm.pop(); err != nil {
			return err
		}
		_, err := vm.pop()
		return err
	case OP_2DUP:
		a, err := vm.top(1)
		if err != nil {
			return err
		}
		b, err := vm.top(0)
		if err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)
	case OP_3DUP:
		a, err := vm.top(2)
		if err != nil {
			return err
		}
		b, err := vm.top(1)
		if err != nil {
			return err
		}
		c, err := vm.top(0)
		if err != nil {
			return err
		}
		for _, v := range [][]byte{a, b, c} {
			if err := vm.push(v); err != nil {
				return err
			}
		}
		return nil
	case OP_2OVER:
		a, err := vm.top(3)
		if err != nil {
			return err
		}
		b, err := vm.top(2)
		if err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)
	case OP_2ROT:
		if len(vm.stack) < 6 {
			return NewScriptError(SEInvalidStackOperation, op, pos, "2ROT requires 6 items")
		}
		n := len(vm.stack)
		a, b := vm.stack[n-6], vm.stack[n-5]
		vm.stack = append(vm.stack[:n-6], vm.stack[n-4:]...)
		return vm.push2(a, b)
	case OP_2SWAP:
		if len(vm.stack) < 4 {
			return NewScriptError(SEInvalidStackOperation, op, pos, "2SWAP requires 4 items")
		}
		n := len(vm.stack)
		vm.stack[n-4], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-4]
		vm.stack[n-3], vm.stack[n-1] = vm.stack[n-1], vm.stack[n-3]
		return nil
	case OP_IFDUP:
		item, err := vm.top(0)
		if err != nil {
			return err
		}
		if IsTrue(item) {
			return vm.push(item)
		}
		return nil
	case OP_DEPTH:
		return vm.push(ScriptNum(len(vm.stack)).Bytes())
	case OP_DROP:
		_, err := vm.pop()
		return err
	case OP_DUP:
		item, err := vm.top(0)
		if err != nil {
			return err
		}
		return vm.push(item)
	case OP_NIP:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := vm.pop(); err != nil {
			return err
		}
		return vm.push(item)
	case OP_OVER:
		item, err := vm.top(1)
		if err != nil {
			return err
		}
		return vm.push(item)
	case OP_PICK, OP_ROLL:
		n, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		idx := int(n.Int32())
		if idx < 0 || idx >= len(vm.stack) {
			return NewScriptError(SEInvalidStackOperation, op, pos, "PICK/ROLL index out of range")
		}
		item := vm.stack[len(vm.stack)-1-idx]
		if op == OP_ROLL {
			vm.stack = append(vm.stack[:len(vm.stack)-1-idx], vm.stack[len(vm.stack)-idx:]...)
		}
		return vm.push(item)
	case OP_ROT:
		if len(vm.stack) < 3 {
			return NewScriptError(SEInvalidStackOperation, op, pos, "ROT requires 3 items")
		}
		n := len(vm.stack)
		vm.stack[n-3], vm.stack[n-2], vm.stack[n-1] = vm.stack[n-2], vm.stack[n-1], vm.stack[n-3]
		return nil
	case OP_SWAP:
		if len(vm.stack) < 2 {
			return NewScriptError(SEInvalidStackOperation, op, pos, "SWAP requires 2 items")
		}
		n := len(vm.stack)
		vm.stack[n-2], vm.stack[n-1] = vm.stack[n-1], vm.stack[n-2]
		return nil
	case OP_TUCK:
		a, err := vm.top(1)
		if err != nil {
			return err
		}
		b, err := vm.top(0)
		if err != nil {
			return err
		}
		n := len(vm.stack)
		vm.stack = vm.stack[:n-2]
		if err := vm.push(b); err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)

	case OP_SIZE:
		item, err := vm.top(0)
		if err != nil {
			return err
		}
		return vm.push(ScriptNum(len(item)).Bytes())

	case OP_EQUAL, OP_EQUALVERIFY:
		a, err := vm.pop()
		if err != nil {
			return err
		}
		b, err := vm.pop()
		if err != nil {
			return err
		}
		eq := bytes.Equal(a, b)
		if op == OP_EQUALVERIFY {
			if !eq {
				return NewScriptError(SEEqualVerify, op, pos, "OP_EQUALVERIFY failed")
			}
			return nil
		}
		return vm.push(boolBytes(eq))

	case OP_1ADD, OP_1SUB, OP_NEGATE, OP_ABS, OP_NOT, OP_0NOTEQUAL:
		n, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		var result ScriptNum
		switch op {
		case OP_1ADD:
			result = n + 1
		case OP_1SUB:
			result = n - 1
		case OP_NEGATE:
			result = -n
		case OP_ABS:
			if n < 0 {
				result = -n
			} else {
				result = n
			}
		case OP_NOT:
			if n == 0 {
				result = 1
			}
		case OP_0NOTEQUAL:
			if n != 0 {
				result = 1
			}
		}
		return vm.push(result.Bytes())

	case OP_ADD, OP_SUB, OP_BOOLAND, OP_BOOLOR, OP_NUMEQUAL, OP_NUMEQUALVERIFY,
		OP_NUMNOTEQUAL, OP_LESSTHAN, OP_GREATERTHAN, OP_LESSTHANOREQUAL,
		OP_GREATERTHANOREQUAL, OP_MIN, OP_MAX:
		b, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		a, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		var result ScriptNum
		switch op {
		case OP_ADD:
			result = a + b
		case OP_SUB:
			result = a - b
		case OP_BOOLAND:
			result = boolNum(a != 0 && b != 0)
		case OP_BOOLOR:
			result = boolNum(a != 0 || b != 0)
		case OP_NUMEQUAL:
			result = boolNum(a == b)
		case OP_NUMEQUALVERIFY:
			if a != b {
				return NewScriptError(SEEqualVerify, op, pos, "OP_NUMEQUALVERIFY failed")
			}
			return nil
		case OP_NUMNOTEQUAL:
			result = boolNum(a != b)
		case OP_LESSTHAN:
			result = boolNum(a < b)
		case OP_GREATERTHAN:
			result = boolNum(a > b)
		case OP_LESSTHANOREQUAL:
			result = boolNum(a <= b)
		case OP_GREATERTHANOREQUAL:
			result = boolNum(a >= b)
		case OP_MIN:
			if a < b {
				result = a
			} else {
				result = b
			}
		case OP_MAX:
			if a > b {
				result = a
			} else {
				result = b
			}
		}
		return vm.push(result.Bytes())

	case OP_WITHIN:
		max, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		min, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		x, err := vm.popScriptNum()
		if err != nil {
			return err
		}
		return vm.push(boolNum(x >= min && x < max).Bytes())

	case OP_RIPEMD160, OP_SHA1, OP_SHA256, OP_HASH160, OP_HASH256:
		item, err := vm.pop()
		if err != nil {
			return err
		}
		switch op {
		case OP_RIPEMD160:
			return vm.push(Ripemd160Sum(item))
		case OP_SHA1:
			sum := sha1.Sum(item)
			return vm.push(sum[:])
		case OP_SHA256:
			sum := sha256.Sum256(item)
			return vm.push(sum[:])
		case OP_HASH160:
			h := ComputeHash160(item)
			return vm.push(h[:])
		case OP_HASH256:
			h := Hash256Raw(item)
			return vm.push(h[:])
		}
		return nil

	case OP_CODESEPARATOR:
		*lastCodeSep = pos
		return nil

	case OP_CHECKSIG, OP_CHECKSIGVERIFY:
		pubKeyBytes, err := vm.pop()
		if err != nil {
			return err
		}
		sigBytes, err := vm.pop()
		if err != nil {
			return err
		}
		subscript := script.SubscriptFrom(*lastCodeSep)
		ok := vm.checker.CheckSig(sigBytes, pubKeyBytes, subscript)
		if !ok && vm.flags&FlagNullFail != 0 && len(sigBytes) != 0 {
			return NewScriptError(SENullFail, op, pos, "non-null signature failed verification")
		}
		if op == OP_CHECKSIGVERIFY {
			if !ok {
				return NewScriptError(SECheckSigVerify, op, pos, "OP_CHECKSIGVERIFY failed")
			}
			return nil
		}
		return vm.push(boolBytes(ok))

	case OP_CHECKMULTISIG, OP_CHECKMULTISIGVERIFY:
		ok, err := vm.execCheckMultisig(op, pos, lastCodeSep, script)
		if err != nil {
			return err
		}
		if op == OP_CHECKMULTISIGVERIFY {
			if !ok {
				return NewScriptError(SECheckSigVerify, op, pos, "OP_CHECKMULTISIGVERIFY failed")
			}
			return nil
		}
		return vm.push(boolBytes(ok))

	default:
		return NewScriptError(SEBadOpcode, op, pos, "unimplemented or unknown opcode")
	}
}

func (vm *Interpreter) push2(a, b []byte) error {
	if err := vm.push(a); err != nil {
		return err
	}
	return vm.push(b)
}

func boolNum(b bool) ScriptNum {
	if b {
		return 1
	}
	return 0
}

func (vm *Interpreter) execCheckMultisig(op Opcode, pos int, lastCodeSep *int, script Script) (bool, error) {
	// CHECKMULTISIG counts once per public key against the opcode budget,
	// on top of the single increment the dispatch loop already gave it.
	nNum, err := vm.popScriptNum()
	if err != nil {
		return false, err
	}
	n := int(nNum.Int32())
	if n < 0 || n > maxMultisigKeys {
		return false, NewScriptError(SEPushSize, op, pos, "public key count out of range")
	}
	vm.opCount += n
	if vm.opCount > maxOpsPerScript {
		return false, NewScriptError(SEOpCount, op, pos, "opcode count exceeds limit")
	}
	pubKeys := make([][]byte, n)
	for i := n - 1; i >= 0; i-- {
		pubKeys[i], err = vm.pop()
		if err != nil {
			return false, err
		}
	}

	mNum, err := vm.popScriptNum()
	if err != nil {
		return false, err
	}
	m := int(mNum.Int32())
	if m < 0 || m > n {
		return false, NewScriptError(SEPushSize, op, pos, "signature count out of range")
	}
	sigs := make([][]byte, m)
	for i := m - 1; i >= 0; i-- {
		sigs[i], err = vm.pop()
		if err != nil {
			return false, err
		}
	}

	dummy, err := vm.pop()
	if err != nil {
		return false, err
	}
	if vm.flags&FlagNullDummy != 0 && len(dummy) != 0 {
		return false, NewScriptError(SENullDummy, op, pos, "CHECKMULTISIG dummy element must be empty")
	}

	subscript := script.SubscriptFrom(*lastCodeSep)
	sigIdx, keyIdx := 0, 0
	success := true
	for sigIdx < m {
		if keyIdx >= n {
			success = false
			break
		}
		if vm.checker.CheckSig(sigs[sigIdx], pubKeys[keyIdx], subscript) {
			sigIdx++
		}
		keyIdx++
	}

	if !success && vm.flags&FlagNullFail != 0 {
		for _, s := range sigs {
			if len(s) != 0 {
				return false, NewScriptError(SENullFail, op, pos, "failed multisig left a non-null signature")
			}
		}
	}
	return success, nil
}

// EvaluatePair runs the full two-script (plus optional BIP16 P2SH) protocol
// spec.md §4.7 describes: unlocking script against an empty stack, then
// locking script against the result, with CLEANSTACK and P2SH handled at
// the top level.
func EvaluatePair(unlocking, locking Script, checker SignatureChecker, flags ExecFlag) error {
	if flags&FlagSigPushOnly != 0 && !unlocking.IsPushOnly() {
		return NewScriptError(SESigPushOnly, 0, 0, "unlocking script is not push-only")
	}

	vm1 := newInterpreter(flags, checker)
	if err := vm1.Eval(unlocking); err != nil {
		return err
	}

	vm2 := newInterpreter(flags, checker)
	vm2.stack = append([][]byte{}, vm1.stack...)
	if err := vm2.Eval(locking); err != nil {
		return err
	}
	if len(vm2.stack) == 0 || !IsTrue(vm2.stack[len(vm2.stack)-1]) {
		return NewScriptError(SEEvalFalse, 0, 0, "final stack top is not true")
	}

	isP2SH := flags&FlagP2SH != 0 && IsP2SHLockingScript(locking)
	if isP2SH {
		if len(vm1.stack) == 0 {
			return NewScriptError(SEInvalidStackOperation, 0, 0, "P2SH requires a redeem script on the stack")
		}
		redeemScriptBytes := vm1.stack[len(vm1.stack)-1]
		redeemScript := Script(redeemScriptBytes)
		vm3 := newInterpreter(flags, checker)
		vm3.stack = append([][]byte{}, vm1.stack[:len(vm1.stack)-1]...)
		if err := vm3.Eval(redeemScript); err != nil {
			return err
		}
		if len(vm3.stack) == 0 || !IsTrue(vm3.stack[len(vm3.stack)-1]) {
			return NewScriptError(SEEvalFalse, 0, 0, "P2SH redeem script evaluation failed")
		}
		if flags&FlagCleanStack != 0 && len(vm3.stack) != 1 {
			return NewScriptError(SECleanStack, 0, 0, "stack not clean after P2SH evaluation")
		}
		return nil
	}

	if flags&FlagCleanStack != 0 && len(vm2.stack) != 1 {
		return NewScriptError(SECleanStack, 0, 0, "stack not clean after evaluation")
	}
	return nil
}
