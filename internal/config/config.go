// Package config collects the compiler options from defaults, an optional
// solang.toml file and SOLANG_* environment variables. Command line flags
// are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	"github.com/salaheldinsoliman/solang/internal/sema"
)

var log = commonlog.GetLogger("solang.config")

// FileName is the configuration file looked up in the working directory.
const FileName = "solang.toml"

// Emit names a compiler output printed after code generation.
type Emit string

const (
	EmitNone Emit = ""
	EmitCFG  Emit = "cfg"
)

type Options struct {
	Target          string
	AddressLength   int
	ValueLength     int
	ConstantFolding bool
	Verbosity       int
	Emit            Emit
	// LegacyEmit tolerates emits matching several events which are
	// identical in Solidity 0.5.
	LegacyEmit bool
}

// tomlFile is solang.toml as it is encoded in TOML
type tomlFile struct {
	Target   *tomlTarget   `toml:"target"`
	Settings *tomlSettings `toml:"settings"`
}

type tomlTarget struct {
	Name          string `toml:"name"`
	AddressLength int    `toml:"address-length,omitempty"`
	ValueLength   int    `toml:"value-length,omitempty"`
}

type tomlSettings struct {
	ConstantFolding *bool  `toml:"constant-folding"`
	LogLevel        *int   `toml:"log-level"`
	Emit            string `toml:"emit,omitempty"`
	LegacyEmit      bool   `toml:"legacy-emit"`
}

func Default() Options {
	return Options{
		Target:          "evm",
		ConstantFolding: true,
	}
}

// Load reads path over the defaults, then applies the environment. A
// missing file is not an error when optional is set.
func Load(path string, optional bool) (Options, error) {
	opts := Default()

	buff, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := opts.applyFile(buff); err != nil {
			return opts, fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("loaded %s", path)
	case errors.Is(err, os.ErrNotExist) && optional:
		log.Debugf("no %s, using defaults", path)
	default:
		return opts, fmt.Errorf("reading configuration: %w", err)
	}

	opts.ApplyEnv()
	return opts, nil
}

// Parse decodes solang.toml contents over the defaults.
func Parse(buff []byte) (Options, error) {
	opts := Default()
	err := opts.applyFile(buff)
	return opts, err
}

func (o *Options) applyFile(buff []byte) error {
	file := &tomlFile{}
	if err := toml.Unmarshal(buff, file); err != nil {
		return err
	}

	if t := file.Target; t != nil {
		if t.Name != "" {
			o.Target = strings.ToLower(t.Name)
		}
		o.AddressLength = t.AddressLength
		o.ValueLength = t.ValueLength
	}
	if s := file.Settings; s != nil {
		if s.ConstantFolding != nil {
			o.ConstantFolding = *s.ConstantFolding
		}
		if s.LogLevel != nil {
			o.Verbosity = *s.LogLevel
		}
		if s.Emit != "" {
			o.Emit = Emit(s.Emit)
		}
		o.LegacyEmit = s.LegacyEmit
	}
	return nil
}

// ApplyEnv overrides the options with the SOLANG_* environment variables
// that are set.
func (o *Options) ApplyEnv() {
	if env.Has("SOLANG_TARGET") {
		o.Target = strings.ToLower(env.Str("SOLANG_TARGET"))
	}
	o.AddressLength = env.Int("SOLANG_ADDRESS_LENGTH", o.AddressLength)
	o.ValueLength = env.Int("SOLANG_VALUE_LENGTH", o.ValueLength)
	if env.Bool("SOLANG_NO_CONSTANT_FOLDING") {
		o.ConstantFolding = false
	}
	o.Verbosity = env.Int("SOLANG_VERBOSITY", o.Verbosity)
}

// Validate checks the options against what the targets support.
func (o Options) Validate() error {
	if _, err := sema.TargetFromName(o.Target); err != nil {
		return err
	}
	for _, l := range []struct {
		name  string
		value int
	}{{"address length", o.AddressLength}, {"value length", o.ValueLength}} {
		if l.value != 0 && (l.value < 4 || l.value >= 1024) {
			return fmt.Errorf("%s %d is not in the range 4..1023", l.name, l.value)
		}
	}
	if o.AddressLength != 0 && o.Target != "polkadot" && o.Target != "substrate" {
		return fmt.Errorf("address length can only be set for polkadot, not %s", o.Target)
	}
	if o.ValueLength != 0 && o.Target == "solana" {
		return errors.New("value length cannot be set for solana")
	}
	switch o.Emit {
	case EmitNone, EmitCFG:
	default:
		return fmt.Errorf("unknown emit %q", o.Emit)
	}
	return nil
}

// SemaTarget returns the target description for the namespace. Options
// must have been validated.
func (o Options) SemaTarget() sema.Target {
	target, err := sema.TargetFromName(o.Target)
	if err != nil {
		panic(err)
	}
	if o.AddressLength != 0 {
		target.AddressLength = o.AddressLength
	}
	if o.ValueLength != 0 {
		target.ValueLength = o.ValueLength
	}
	return target
}
