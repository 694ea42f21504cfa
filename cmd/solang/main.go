// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ComedicChimera/olive"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/salaheldinsoliman/solang/internal/codegen"
	"github.com/salaheldinsoliman/solang/internal/config"
	"github.com/salaheldinsoliman/solang/internal/diagnostics"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cli := olive.NewCLI("solang", "solang resolves Solidity contracts and builds their control flow graphs", true)
	cli.AddPrimaryArg("file", "the Solidity source file", true)
	cli.AddSelectorArg("target", "t", "the target chain", false, []string{"evm", "polkadot", "solana"})
	cli.AddStringArg("address-length", "al", "address length in bytes (polkadot only)", false)
	cli.AddStringArg("value-length", "vl", "value length in bytes", false)
	cli.AddSelectorArg("emit", "e", "print a compiler output", false, []string{"cfg"})
	cli.AddStringArg("config", "c", "configuration file", false)
	cli.AddFlag("no-constant-folding", "ncf", "disable constant folding")
	cli.AddFlag("stats", "s", "print a table of the generated control flow graphs")
	cli.AddFlag("explain", "x", "describe the code of every diagnostic")
	cli.AddFlag("verbose", "v", "log debug output")

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		color.Red("usage error: %s", err)
		return 2
	}

	opts, err := loadOptions(result)
	if err != nil {
		color.Red("configuration error: %s", err)
		return 2
	}
	commonlog.Configure(opts.Verbosity, nil)

	path, _ := result.PrimaryArg()
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		return 1
	}

	startTime := time.Now()

	ns := sema.NewNamespace(opts.SemaTarget())
	ns.LegacyEmit = opts.LegacyEmit
	sema.ParseAndResolve(ns, path, string(source))

	var cfgs []*codegen.ControlFlowGraph
	if !ns.Diagnostics.AnyErrors() {
		cfgs = codegen.Generate(ns, codegen.Options{ConstantFolding: opts.ConstantFolding})
	}

	reporter := diagnostics.NewReporter()
	reporter.Explain = result.HasFlag("explain")
	for _, file := range ns.Files {
		reporter.AddFile(file.Path, file.Source)
	}
	ns.Diagnostics.SortAndDedup()
	fmt.Print(reporter.FormatAll(ns.Diagnostics))

	duration := time.Since(startTime)
	if ns.Diagnostics.AnyErrors() {
		color.Red("Compilation failed after %s", duration.Round(time.Microsecond))
		return 1
	}

	if opts.Emit == config.EmitCFG {
		for _, cfg := range cfgs {
			fmt.Println(cfg.String(ns))
		}
	}
	if result.HasFlag("stats") {
		printStats(cfgs)
	}

	color.Green("Successfully processed %s in %s", path, duration.Round(time.Microsecond))
	return 0
}

// loadOptions merges the configuration file, the environment and the
// command line, in increasing order of precedence.
func loadOptions(result *olive.ArgParseResult) (config.Options, error) {
	path, optional := config.FileName, true
	if v, ok := result.Arguments["config"]; ok {
		path, optional = v.(string), false
	}
	opts, err := config.Load(path, optional)
	if err != nil {
		return opts, err
	}

	if v, ok := result.Arguments["target"]; ok {
		opts.Target = v.(string)
	}
	for name, dest := range map[string]*int{"address-length": &opts.AddressLength, "value-length": &opts.ValueLength} {
		v, ok := result.Arguments[name]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v.(string))
		if err != nil {
			return opts, fmt.Errorf("--%s: %w", name, err)
		}
		*dest = n
	}
	if v, ok := result.Arguments["emit"]; ok {
		opts.Emit = config.Emit(v.(string))
	}
	if result.HasFlag("no-constant-folding") {
		opts.ConstantFolding = false
	}
	if result.HasFlag("verbose") && opts.Verbosity < 2 {
		opts.Verbosity = 2
	}

	return opts, opts.Validate()
}

func printStats(cfgs []*codegen.ControlFlowGraph) {
	data := pterm.TableData{{"CFG", "Blocks", "Instructions", "Variables"}}
	for _, cfg := range cfgs {
		instrs := 0
		for _, block := range cfg.Blocks {
			instrs += len(block.Instrs)
		}
		data = append(data, []string{
			cfg.Name,
			strconv.Itoa(len(cfg.Blocks)),
			strconv.Itoa(instrs),
			strconv.Itoa(len(cfg.Vars)),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		color.Red("%s", err)
	}
}
