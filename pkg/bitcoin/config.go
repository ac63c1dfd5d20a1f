package bitcoin

// Config bundles the public, enumerated options spec.md §6 lists: the
// network a wallet targets, the fee/dust policy a builder defaults to, the
// interpreter flags a verification call uses, and the sighash type signing
// defaults to when the caller doesn't pick one explicitly.
type Config struct {
	Network       NetworkType
	FeePerKb      uint64
	DustThreshold uint64
	ScriptFlags   ExecFlag
	SighashType   SighashType
}

// Option mutates a Config being built by NewConfig.
type Option func(*Config)

// WithNetwork selects the version bytes and extended-key magic a wallet
// uses for addresses and BIP32 keys.
func WithNetwork(network NetworkType) Option {
	return func(c *Config) { c.Network = network }
}

// WithFeePerKb overrides the default fee density new builders are created
// with.
func WithFeePerKb(rate uint64) Option {
	return func(c *Config) { c.FeePerKb = rate }
}

// WithDustThreshold overrides the default dust threshold new builders are
// created with.
func WithDustThreshold(threshold uint64) Option {
	return func(c *Config) { c.DustThreshold = threshold }
}

// WithScriptFlags overrides the interpreter flags Verify uses.
func WithScriptFlags(flags ExecFlag) Option {
	return func(c *Config) { c.ScriptFlags = flags }
}

// WithSighashType overrides the sighash type signing defaults to.
func WithSighashType(t SighashType) Option {
	return func(c *Config) { c.SighashType = t }
}

// NewConfig builds a Config from the library defaults (mainnet, the
// standard fee rate and dust threshold, StandardFlags, SIGHASH_ALL|FORKID),
// applying opts in order.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		Network:       Mainnet,
		FeePerKb:      DefaultFeePerKb,
		DustThreshold: DefaultDustThreshold,
		ScriptFlags:   StandardFlags,
		SighashType:   SighashAll | SighashForkID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBuilder returns a TransactionBuilder seeded from this config's fee and
// dust settings.
func (c *Config) NewBuilder() *TransactionBuilder {
	return NewTransactionBuilder().WithFeePerKb(c.FeePerKb).WithDustThreshold(c.DustThreshold)
}

// Verify runs EvaluatePair using this config's script flags and a
// transaction-backed signature checker.
func (c *Config) Verify(tx *Transaction, inputIndex int, prevValue uint64) error {
	checker := &TransactionSignatureChecker{Tx: tx, InputIndex: inputIndex, PrevValue: prevValue, Flags: c.ScriptFlags}
	in := tx.Inputs[inputIndex]
	return EvaluatePair(in.UnlockingScript, in.UTXO.LockingScript(), checker, c.ScriptFlags)
}
