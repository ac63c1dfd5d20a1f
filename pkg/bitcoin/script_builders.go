package bitcoin

// LockBuilder produces a locking script for a standard template and knows
// how to recover its parameters from an already-built script.
type LockBuilder interface {
	LockingScript() Script
	TemplateName() string
}

// UnlockBuilder produces an unlocking script once the signature(s) it needs
// have been computed, and estimates the worst-case size of that script for
// fee calculation before signing has happened. sigs are DER signatures with
// the sighash type byte already appended, in the order the template expects.
type UnlockBuilder interface {
	UnlockingScript(sigs [][]byte) (Script, error)
	EstimateSize() int
	TemplateName() string
}

// --- P2PKH -----------------------------------------------------------------

// P2PKHLockBuilder builds/parses `DUP HASH160 <h160> EQUALVERIFY CHECKSIG`.
type P2PKHLockBuilder struct {
	Hash160 Hash160
}

func NewP2PKHLockBuilder(h160 Hash160) *P2PKHLockBuilder {
	return &P2PKHLockBuilder{Hash160: h160}
}

func (b *P2PKHLockBuilder) LockingScript() Script {
	return NewScriptBuilder().
		AddOp(OP_DUP).AddOp(OP_HASH160).AddData(b.Hash160[:]).
		AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).Script()
}

func (b *P2PKHLockBuilder) TemplateName() string { return "P2PKH" }

// ParseP2PKHLockingScript recovers the hash160 from a locking script,
// or fails with NotAStandardTemplate.
func ParseP2PKHLockingScript(s Script) (*P2PKHLockBuilder, error) {
	chunks, err := s.Chunks()
	if err != nil {
		return nil, &NotAStandardTemplate{Template: "P2PKH"}
	}
	if len(chunks) != 5 ||
		chunks[0].Op != OP_DUP || chunks[1].Op != OP_HASH160 ||
		chunks[2].Data == nil || len(chunks[2].Data) != 20 ||
		chunks[3].Op != OP_EQUALVERIFY || chunks[4].Op != OP_CHECKSIG {
		return nil, &NotAStandardTemplate{Template: "P2PKH"}
	}
	var h160 Hash160
	copy(h160[:], chunks[2].Data)
	return &P2PKHLockBuilder{Hash160: h160}, nil
}

// P2PKHUnlockBuilder builds `<sig> <pubkey>`.
type P2PKHUnlockBuilder struct {
	PubKey *PublicKey
}

func NewP2PKHUnlockBuilder(pub *PublicKey) *P2PKHUnlockBuilder {
	return &P2PKHUnlockBuilder{PubKey: pub}
}

func (b *P2PKHUnlockBuilder) UnlockingScript(sigs [][]byte) (Script, error) {
	if len(sigs) != 1 || sigs[0] == nil {
		return nil, NewError(ErrMissingUnlockBuilder, "P2PKH unlock requires exactly one signature")
	}
	return NewScriptBuilder().AddData(sigs[0]).AddData(b.PubKey.Bytes()).Script(), nil
}

// EstimateSize returns the canonical worst-case P2PKH unlocking script size
// (1 + 72 sig-with-sighash-byte + 1 + 33 pubkey, rounded to 107 per
// spec.md §9 invariant using the standard 72-byte DER bound).
func (b *P2PKHUnlockBuilder) EstimateSize() int { return 107 }

func (b *P2PKHUnlockBuilder) TemplateName() string { return "P2PKH" }

// --- P2PK --------------------------------------------------------------

// P2PKLockBuilder builds/parses `<pubkey> CHECKSIG`.
type P2PKLockBuilder struct {
	PubKey *PublicKey
}

func NewP2PKLockBuilder(pub *PublicKey) *P2PKLockBuilder {
	return &P2PKLockBuilder{PubKey: pub}
}

func (b *P2PKLockBuilder) LockingScript() Script {
	return NewScriptBuilder().AddData(b.PubKey.Bytes()).AddOp(OP_CHECKSIG).Script()
}

func (b *P2PKLockBuilder) TemplateName() string { return "P2PK" }

// ParseP2PKLockingScript recovers the public key from a locking script.
func ParseP2PKLockingScript(s Script) (*P2PKLockBuilder, error) {
	chunks, err := s.Chunks()
	if err != nil {
		return nil, &NotAStandardTemplate{Template: "P2PK"}
	}
	if len(chunks) != 2 || chunks[0].Data == nil || chunks[1].Op != OP_CHECKSIG {
		return nil, &NotAStandardTemplate{Template: "P2PK"}
	}
	pub, err := PublicKeyFromBytes(chunks[0].Data)
	if err != nil {
		return nil, &NotAStandardTemplate{Template: "P2PK"}
	}
	return &P2PKLockBuilder{PubKey: pub}, nil
}

// P2PKUnlockBuilder builds `<sig>`.
type P2PKUnlockBuilder struct{}

func NewP2PKUnlockBuilder() *P2PKUnlockBuilder { return &P2PKUnlockBuilder{} }

func (b *P2PKUnlockBuilder) UnlockingScript(sigs [][]byte) (Script, error) {
	if len(sigs) != 1 || sigs[0] == nil {
		return nil, NewError(ErrMissingUnlockBuilder, "P2PK unlock requires exactly one signature")
	}
	return NewScriptBuilder().AddData(sigs[0]).Script(), nil
}

func (b *P2PKUnlockBuilder) EstimateSize() int { return 73 }

func (b *P2PKUnlockBuilder) TemplateName() string { return "P2PK" }

// --- P2SH ----------------------------------------------------------------

// P2SHLockBuilder builds/parses `HASH160 <h160> EQUAL`.
type P2SHLockBuilder struct {
	Hash160 Hash160
}

func NewP2SHLockBuilder(h160 Hash160) *P2SHLockBuilder {
	return &P2SHLockBuilder{Hash160: h160}
}

func (b *P2SHLockBuilder) LockingScript() Script {
	return NewScriptBuilder().AddOp(OP_HASH160).AddData(b.Hash160[:]).AddOp(OP_EQUAL).Script()
}

func (b *P2SHLockBuilder) TemplateName() string { return "P2SH" }

// IsP2SHLockingScript reports whether s is exactly `HASH160 <20 bytes> EQUAL`
// — the interpreter checks this directly (spec.md §4.7 step 4) without
// going through the full parser/builder round trip.
func IsP2SHLockingScript(s Script) bool {
	return len(s) == 23 && s[0] == byte(OP_HASH160) && s[1] == 20 && s[22] == byte(OP_EQUAL)
}

// ParseP2SHLockingScript recovers the hash160 from a P2SH locking script.
func ParseP2SHLockingScript(s Script) (*P2SHLockBuilder, error) {
	if !IsP2SHLockingScript(s) {
		return nil, &NotAStandardTemplate{Template: "P2SH"}
	}
	var h160 Hash160
	copy(h160[:], s[2:22])
	return &P2SHLockBuilder{Hash160: h160}, nil
}

// P2SHUnlockBuilder wraps an inner unlock builder and the serialized redeem
// script, building `<inner args...> <redeemScript>`.
type P2SHUnlockBuilder struct {
	Inner        UnlockBuilder
	RedeemScript Script
}

func NewP2SHUnlockBuilder(inner UnlockBuilder, redeemScript Script) *P2SHUnlockBuilder {
	return &P2SHUnlockBuilder{Inner: inner, RedeemScript: redeemScript}
}

func (b *P2SHUnlockBuilder) UnlockingScript(sigs [][]byte) (Script, error) {
	inner, err := b.Inner.UnlockingScript(sigs)
	if err != nil {
		return nil, err
	}
	out := NewScriptBuilder()
	out.buf = append(out.buf, inner...)
	out.AddData(b.RedeemScript.Bytes())
	return out.Script(), nil
}

func (b *P2SHUnlockBuilder) EstimateSize() int {
	return b.Inner.EstimateSize() + len(PushData(b.RedeemScript.Bytes()))
}

func (b *P2SHUnlockBuilder) TemplateName() string { return "P2SH" }

// --- P2MS (bare multisig) -------------------------------------------------

// P2MSLockBuilder builds/parses `<m> <pk1>..<pkN> <N> CHECKMULTISIG`.
type P2MSLockBuilder struct {
	M       int
	PubKeys []*PublicKey
}

func NewP2MSLockBuilder(m int, pubKeys []*PublicKey) *P2MSLockBuilder {
	return &P2MSLockBuilder{M: m, PubKeys: pubKeys}
}

func (b *P2MSLockBuilder) LockingScript() Script {
	a := NewScriptBuilder()
	a.AddInt64(int64(b.M))
	for _, pk := range b.PubKeys {
		a.AddData(pk.Bytes())
	}
	a.AddInt64(int64(len(b.PubKeys)))
	a.AddOp(OP_CHECKMULTISIG)
	return a.Script()
}

func (b *P2MSLockBuilder) TemplateName() string { return "P2MS" }

// smallIntFromOp recovers the integer a small-int push opcode or minimal
// pushdata chunk represents, used when parsing the m/n counts out of a
// CHECKMULTISIG script.
func smallIntFromOp(c Chunk) (int, bool) {
	switch {
	case c.Op == OP_0:
		return 0, true
	case c.Op >= OP_1 && c.Op <= OP_16:
		return int(c.Op) - int(OP_1) + 1, true
	case c.Data != nil:
		n, err := ScriptNumFromBytes(c.Data, maxScriptNumLen, true)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// ParseP2MSLockingScript recovers m and the public keys from a bare
// multisig locking script.
func ParseP2MSLockingScript(s Script) (*P2MSLockBuilder, error) {
	chunks, err := s.Chunks()
	if err != nil || len(chunks) < 4 {
		return nil, &NotAStandardTemplate{Template: "P2MS"}
	}
	last := len(chunks) - 1
	if chunks[last].Op != OP_CHECKMULTISIG {
		return nil, &NotAStandardTemplate{Template: "P2MS"}
	}
	m, ok := smallIntFromOp(chunks[0])
	if !ok {
		return nil, &NotAStandardTemplate{Template: "P2MS"}
	}
	n, ok := smallIntFromOp(chunks[last-1])
	if !ok || len(chunks)-3 != n {
		return nil, &NotAStandardTemplate{Template: "P2MS"}
	}
	pubKeys := make([]*PublicKey, 0, n)
	for _, c := range chunks[1 : last-1] {
		if c.Data == nil {
			return nil, &NotAStandardTemplate{Template: "P2MS"}
		}
		pk, err := PublicKeyFromBytes(c.Data)
		if err != nil {
			return nil, &NotAStandardTemplate{Template: "P2MS"}
		}
		pubKeys = append(pubKeys, pk)
	}
	return &P2MSLockBuilder{M: m, PubKeys: pubKeys}, nil
}

// P2MSUnlockBuilder builds `OP_0 <sig1>..<sigM>` — the leading OP_0
// compensates for OP_CHECKMULTISIG's historical off-by-one stack consume.
type P2MSUnlockBuilder struct {
	M int
}

func NewP2MSUnlockBuilder(m int) *P2MSUnlockBuilder { return &P2MSUnlockBuilder{M: m} }

func (b *P2MSUnlockBuilder) UnlockingScript(sigs [][]byte) (Script, error) {
	if len(sigs) != b.M {
		return nil, NewError(ErrMissingUnlockBuilder, "P2MS unlock requires exactly m signatures")
	}
	a := NewScriptBuilder().AddOp(OP_0)
	for _, sig := range sigs {
		if sig == nil {
			return nil, NewError(ErrMissingUnlockBuilder, "P2MS unlock received a nil signature")
		}
		a.AddData(sig)
	}
	return a.Script(), nil
}

func (b *P2MSUnlockBuilder) EstimateSize() int { return 1 + b.M*73 }

func (b *P2MSUnlockBuilder) TemplateName() string { return "P2MS" }

// --- Data (OP_RETURN) -----------------------------------------------------

// DataLockBuilder builds `OP_FALSE OP_RETURN <data1> <data2> ...`. It is
// unspendable: no corresponding UnlockBuilder exists.
type DataLockBuilder struct {
	Fields [][]byte
}

func NewDataLockBuilder(fields ...[]byte) *DataLockBuilder {
	return &DataLockBuilder{Fields: fields}
}

func (b *DataLockBuilder) LockingScript() Script {
	a := NewScriptBuilder().AddOp(OP_FALSE).AddOp(OP_RETURN)
	for _, f := range b.Fields {
		a.AddData(f)
	}
	return a.Script()
}

func (b *DataLockBuilder) TemplateName() string { return "Data" }

// ParseDataLockingScript recovers the pushed fields from an OP_RETURN
// output script.
func ParseDataLockingScript(s Script) (*DataLockBuilder, error) {
	chunks, err := s.Chunks()
	if err != nil || len(chunks) < 2 || chunks[0].Op != OP_FALSE || chunks[1].Op != OP_RETURN {
		return nil, &NotAStandardTemplate{Template: "Data"}
	}
	fields := make([][]byte, 0, len(chunks)-2)
	for _, c := range chunks[2:] {
		if c.Data == nil {
			return nil, &NotAStandardTemplate{Template: "Data"}
		}
		fields = append(fields, c.Data)
	}
	return &DataLockBuilder{Fields: fields}, nil
}
