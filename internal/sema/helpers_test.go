package sema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salaheldinsoliman/solang/internal/diagnostics"
)

// resolveSource parses and resolves source for EVM. Parse errors fail the
// test; semantic diagnostics are left in ns.Diagnostics.
func resolveSource(t *testing.T, source string) *Namespace {
	t.Helper()
	return resolveFor(t, EVM(), source)
}

func resolveFor(t *testing.T, target Target, source string) *Namespace {
	t.Helper()
	ns := NewNamespace(target)
	ParseAndResolve(ns, "test.sol", source)
	for _, d := range ns.Diagnostics {
		require.NotEqual(t, diagnostics.ErrorSyntax, d.Code, "unexpected parse error: %s", d.Message)
		require.NotEqual(t, diagnostics.ErrorScan, d.Code, "unexpected scan error: %s", d.Message)
	}
	return ns
}

func errorMessages(ns *Namespace) []string {
	return messages(ns.Diagnostics.Errors())
}

func warningMessages(ns *Namespace) []string {
	return messages(ns.Diagnostics.Warnings())
}

func messages(list diagnostics.List) []string {
	var res []string
	for _, d := range list {
		res = append(res, d.Message)
	}
	return res
}

// FilterUnused drops unused variable warnings so tests can focus on other
// diagnostics.
func FilterUnused(list diagnostics.List) diagnostics.List {
	var res diagnostics.List
	for _, d := range list {
		if d.Code != diagnostics.WarningUnusedVariable {
			res = append(res, d)
		}
	}
	return res
}

func countContaining(msgs []string, substr string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func functionNamed(t *testing.T, ns *Namespace, name string) *Function {
	t.Helper()
	for _, f := range ns.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not found", name)
	return nil
}
