package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaheldinsoliman/solang/internal/sema"
)

func generate(t *testing.T, target sema.Target, source string, opts Options) (*sema.Namespace, []*ControlFlowGraph) {
	t.Helper()
	ns := sema.NewNamespace(target)
	sema.ParseAndResolve(ns, "test.sol", source)
	require.False(t, ns.Diagnostics.AnyErrors(), "unexpected errors: %v", ns.Diagnostics.Errors())

	cfgs := Generate(ns, opts)
	for _, cfg := range cfgs {
		require.NoError(t, cfg.Validate(), cfg.String(ns))
	}
	return ns, cfgs
}

func cfgNamed(t *testing.T, cfgs []*ControlFlowGraph, name string) *ControlFlowGraph {
	t.Helper()
	for _, cfg := range cfgs {
		if cfg.Name == name {
			return cfg
		}
	}
	t.Fatalf("no cfg named %s", name)
	return nil
}

func instrs[T Instr](cfg *ControlFlowGraph) []T {
	var res []T
	for _, block := range cfg.Blocks {
		for _, entry := range block.Instrs {
			if i, ok := entry.Instr.(T); ok {
				res = append(res, i)
			}
		}
	}
	return res
}

func blockNamed(cfg *ControlFlowGraph, name string) bool {
	for _, block := range cfg.Blocks {
		if block.Name == name {
			return true
		}
	}
	return false
}

func TestGenerateFoldsLocals(t *testing.T) {
	ns, cfgs := generate(t, sema.EVM(), `contract C {
    function f() public pure returns (uint) {
        uint a = 1;
        uint b = a + 2;
        return b;
    }
}`, DefaultOptions())

	require.Len(t, cfgs, 2)
	assert.Equal(t, "C::storage_initializer", cfgs[0].Name)

	f := cfgNamed(t, cfgs, "C::function::f()")
	returns := instrs[*Return](f)
	require.Len(t, returns, 1)
	require.Len(t, returns[0].Values, 1)
	requireNumber(t, returns[0].Values[0], 3)
	assert.Contains(t, f.String(ns), "return uint256 3")
}

func TestGenerateWithoutFolding(t *testing.T) {
	_, cfgs := generate(t, sema.EVM(), `contract C {
    function f() public pure returns (uint) {
        uint a = 1;
        return a;
    }
}`, Options{})

	f := cfgNamed(t, cfgs, "C::function::f()")
	returns := instrs[*Return](f)
	require.Len(t, returns, 1)
	_, ok := returns[0].Values[0].(*sema.Variable)
	assert.True(t, ok)
}

func TestGenerateSkipsNamespaceWithErrors(t *testing.T) {
	ns := sema.NewNamespace(sema.EVM())
	sema.ParseAndResolve(ns, "test.sol", `contract C {
    function f() public pure returns (uint) {
        return x;
    }
}`)
	require.True(t, ns.Diagnostics.AnyErrors())
	assert.Nil(t, Generate(ns, DefaultOptions()))
}

func TestGenerateControlFlow(t *testing.T) {
	_, cfgs := generate(t, sema.EVM(), `contract C {
    function f(uint n) public pure returns (uint total) {
        for (uint i = 0; i < n; i++) {
            if (i == 5) {
                break;
            }
            total += i;
        }
        while (total > 100) {
            total -= 10;
        }
        do {
            total++;
        } while (total < 3);
    }
}`, DefaultOptions())

	f := cfgNamed(t, cfgs, "C::function::f(uint256)")
	for _, name := range []string{"entry", "cond", "for_body", "next", "endfor", "then", "endif", "while_body", "endwhile", "do_body", "do_cond", "enddo"} {
		assert.True(t, blockNamed(f, name), "missing block %s", name)
	}

	// the loop variable and the return variable are written in the loops
	for _, block := range f.Blocks {
		if block.Name == "endfor" {
			assert.NotEmpty(t, block.Phis)
		}
	}

	returns := instrs[*Return](f)
	require.Len(t, returns, 1)
	_, ok := returns[0].Values[0].(*sema.Variable)
	assert.True(t, ok, "a value written in a loop is not constant")
}

func TestGenerateStorage(t *testing.T) {
	ns, cfgs := generate(t, sema.EVM(), `contract C {
    uint counter = 7;
    mapping(address => uint) balances;

    function deposit(address who, uint amount) public {
        balances[who] += amount;
        counter++;
    }

    function get(address who) public view returns (uint) {
        return balances[who];
    }
}`, DefaultOptions())

	init := cfgNamed(t, cfgs, "C::storage_initializer")
	stores := instrs[*SetStorage](init)
	require.Len(t, stores, 1)
	requireNumber(t, stores[0].Value, 7)
	requireNumber(t, stores[0].Storage, 0)

	deposit := cfgNamed(t, cfgs, "C::function::deposit(address,uint256)")
	assert.Len(t, instrs[*SetStorage](deposit), 2)
	assert.Len(t, instrs[*LoadStorage](deposit), 2)

	get := cfgNamed(t, cfgs, "C::function::get(address)")
	loads := instrs[*LoadStorage](get)
	require.Len(t, loads, 1)
	_, hashed := loads[0].Storage.(*sema.Keccak256)
	assert.True(t, hashed, "mapping slot is %s", get.String(ns))
}

func TestGenerateRequireAndRevert(t *testing.T) {
	_, cfgs := generate(t, sema.EVM(), `contract C {
    error TooLow(uint value);

    function f(uint x) public pure {
        require(x > 1, "too small");
        assert(x != 3);
        if (x == 4) {
            revert TooLow(x);
        }
        revert("done");
    }
}`, DefaultOptions())

	f := cfgNamed(t, cfgs, "C::function::f(uint256)")
	failures := instrs[*AssertFailure](f)
	require.Len(t, failures, 4)
	for _, failure := range failures {
		_, ok := failure.Expr.(*sema.AbiEncode)
		assert.True(t, ok)
	}
	assert.True(t, blockNamed(f, "noassert"))
	assert.True(t, blockNamed(f, "doassert"))

	encoded := failures[len(failures)-1].Expr.(*sema.AbiEncode)
	require.Len(t, encoded.Packed, 1)
	selector := encoded.Packed[0].(*sema.BytesLiteral)
	assert.Equal(t, []byte{0x08, 0xc3, 0x79, 0xa0}, selector.Value)
}

func TestGenerateEmit(t *testing.T) {
	_, cfgs := generate(t, sema.EVM(), `contract C {
    event Transfer(address indexed from, uint value);

    function f(uint v) public {
        emit Transfer(msg.sender, v);
    }
}`, DefaultOptions())

	f := cfgNamed(t, cfgs, "C::function::f(uint256)")
	events := instrs[*EmitEvent](f)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Topics, 2)
	assert.Len(t, events[0].Data, 1)

	topic0 := events[0].Topics[0].(*sema.BytesLiteral)
	assert.Equal(t, Hash(sema.BuiltinKeccak256, []byte("Transfer(address,uint256)")), topic0.Value)
}

func TestGenerateInlinesModifiers(t *testing.T) {
	ns, cfgs := generate(t, sema.EVM(), `contract C {
    uint count;

    modifier counted() {
        count += 1;
        _;
    }

    function f(uint x) public counted returns (uint) {
        return x + 1;
    }
}`, DefaultOptions())

	for _, cfg := range cfgs {
		assert.False(t, strings.Contains(cfg.Name, "modifier"), "modifiers get no cfg of their own")
	}

	f := cfgNamed(t, cfgs, "C::function::f(uint256)")
	assert.True(t, blockNamed(f, "modifier_continue"))
	assert.Len(t, instrs[*SetStorage](f), 1)

	last := f.Blocks[len(f.Blocks)-1]
	_, returns := last.Instrs[len(last.Instrs)-1].Instr.(*Return)
	assert.True(t, returns, f.String(ns))
}

func TestGenerateDestructureLoadsStorage(t *testing.T) {
	ns, cfgs := generate(t, sema.EVM(), `contract C {
    uint s = 5;

    function f() public view returns (uint) {
        (uint a, ) = (s, 1);
        return a;
    }
}`, DefaultOptions())

	f := cfgNamed(t, cfgs, "C::function::f()")
	require.Len(t, instrs[*LoadStorage](f), 1, f.String(ns))

	returns := instrs[*Return](f)
	require.Len(t, returns, 1)
	_, ok := returns[0].Values[0].(*sema.Variable)
	assert.True(t, ok, "the slot number must not be returned: %s", f.String(ns))
}

func TestGenerateConvertsToDeclaredTypes(t *testing.T) {
	ns, cfgs := generate(t, sema.EVM(), `contract C {
    function g() internal pure returns (uint8) {
        return 7;
    }

    function f(uint8 v) public pure returns (uint64) {
        (uint64 x, bool b) = (v, true);
        if (b) {
            return x;
        }
        return g();
    }
}`, Options{})

	f := cfgNamed(t, cfgs, "C::function::f(uint8)")

	widened := false
	for _, set := range instrs[*Set](f) {
		if ext, ok := set.Expr.(*sema.ZeroExt); ok && ext.Ty == (sema.Uint{Bits: 64}) {
			widened = true
		}
	}
	assert.True(t, widened, "destructured value is not widened: %s", f.String(ns))

	returns := instrs[*Return](f)
	require.Len(t, returns, 2)
	var call *sema.ZeroExt
	for _, ret := range returns {
		if ext, ok := ret.Values[0].(*sema.ZeroExt); ok {
			call = ext
		}
	}
	require.NotNil(t, call, "call result is not widened: %s", f.String(ns))
	assert.Equal(t, sema.Uint{Bits: 64}, call.Ty)
}

func TestGenerateMemoryArrayLength(t *testing.T) {
	_, cfgs := generate(t, sema.DefaultPolkadot(), `contract C {
    function f() public pure returns (uint32) {
        uint64[] memory a = new uint64[](3);
        a.push(1);
        a.push(2);
        a.pop();
        return a.length;
    }
}`, DefaultOptions())

	f := cfgNamed(t, cfgs, "C::function::f()")
	assert.Len(t, instrs[*PushMemory](f), 2)
	assert.Len(t, instrs[*PopMemory](f), 1)
	require.Len(t, f.ArrayLengthsTemps, 1)

	returns := instrs[*Return](f)
	require.Len(t, returns, 1)
	requireNumber(t, returns[0].Values[0], 4)
}

func TestSelector(t *testing.T) {
	assert.Equal(t, errorSelector, Selector("Error(string)"))
	assert.Equal(t, panicSelector, Selector("Panic(uint256)"))
	assert.Equal(t, uint32(0xa9059cbb), Selector("transfer(address,uint256)"))
}

func TestPipeline(t *testing.T) {
	assert.Empty(t, NewPipeline(Options{}).Passes())

	passes := NewPipeline(DefaultOptions()).Passes()
	require.Len(t, passes, 2)
	assert.Equal(t, "reaching definitions", passes[0].Name())
	assert.Equal(t, "constant folding", passes[1].Name())
}
