package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"github.com/salaheldinsoliman/solang/internal/sema"
)

func TestDefault(t *testing.T) {
	opts := Default()
	be.Equal(t, opts.Target, "evm")
	be.True(t, opts.ConstantFolding)
	be.Err(t, opts.Validate(), nil)
	be.Equal(t, opts.SemaTarget().Chain, sema.ChainEVM)
}

func TestParse(t *testing.T) {
	opts, err := Parse([]byte(`
[target]
name = "Polkadot"
address-length = 20
value-length = 8

[settings]
constant-folding = false
log-level = 3
emit = "cfg"
`))
	be.Err(t, err, nil)
	be.Equal(t, opts.Target, "polkadot")
	be.Equal(t, opts.AddressLength, 20)
	be.Equal(t, opts.ValueLength, 8)
	be.Equal(t, opts.ConstantFolding, false)
	be.Equal(t, opts.Verbosity, 3)
	be.Equal(t, opts.Emit, EmitCFG)
	be.Err(t, opts.Validate(), nil)

	target := opts.SemaTarget()
	be.Equal(t, target.Chain, sema.ChainPolkadot)
	be.Equal(t, target.AddressLength, 20)
	be.Equal(t, target.ValueLength, 8)
}

func TestParseKeepsDefaults(t *testing.T) {
	opts, err := Parse([]byte(`
[settings]
legacy-emit = true
`))
	be.Err(t, err, nil)
	be.Equal(t, opts.Target, "evm")
	be.True(t, opts.ConstantFolding)
	be.True(t, opts.LegacyEmit)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`[target`))
	be.Err(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		err  string
	}{
		{"unknown target", Options{Target: "wasm"}, `unknown target "wasm"`},
		{"address length on evm", Options{Target: "evm", AddressLength: 32}, "address length can only be set for polkadot, not evm"},
		{"address length too small", Options{Target: "polkadot", AddressLength: 2}, "address length 2 is not in the range 4..1023"},
		{"value length too large", Options{Target: "polkadot", ValueLength: 1024}, "value length 1024 is not in the range 4..1023"},
		{"value length on solana", Options{Target: "solana", ValueLength: 8}, "value length cannot be set for solana"},
		{"unknown emit", Options{Target: "evm", Emit: "llvm"}, `unknown emit "llvm"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.opts.Validate()
			be.Err(t, err)
			be.Equal(t, err.Error(), test.err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, FileName), false)
	be.Err(t, err)

	opts, err := Load(filepath.Join(dir, FileName), true)
	be.Err(t, err, nil)
	be.Equal(t, opts.Target, Default().Target)

	path := filepath.Join(dir, FileName)
	be.Err(t, os.WriteFile(path, []byte("[target]\nname = \"solana\"\n"), 0o644), nil)
	opts, err = Load(path, false)
	be.Err(t, err, nil)
	be.Equal(t, opts.SemaTarget().Chain, sema.ChainSolana)
}
