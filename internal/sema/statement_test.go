package sema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantOverflowInInitializer(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure returns (int8) {
        int8 x = 127 + 6;
        return x;
    }
}`)
	assert.Contains(t, errorMessages(ns), "value 133 does not fit into type int8.")
}

func TestNegativeValueInUnsigned(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure returns (uint8) {
        uint8 x = 3 - 4;
        return x;
    }
}`)
	assert.Contains(t, errorMessages(ns),
		"negative value -1 does not fit into type uint8. Cannot implicitly convert signed literal to unsigned type.")
}

func TestConstantOverflowNextToVariable(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f(int8 input) public pure returns (int8) {
        int8 x = 126 + 7 + input;
        return x;
    }
}`)
	assert.Contains(t, errorMessages(ns), "value 133 does not fit into type int8.")
}

func TestUnreachableStatementWarnedOnce(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure returns (uint) {
        return 1;
        uint y = 2;
        y = 3;
    }
}`)
	assert.Empty(t, errorMessages(ns))
	assert.Equal(t, 1, countContaining(warningMessages(ns), "unreachable statement"))
}

func TestLoopControlOutsideLoop(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure {
        break;
    }
    function g() public pure {
        continue;
    }
}`)
	msgs := errorMessages(ns)
	assert.Contains(t, msgs, "break statement not in loop")
	assert.Contains(t, msgs, "continue statement not in loop")
}

func TestInfiniteLoopIsUnreachable(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure returns (uint) {
        while (true) {
        }
    }
    function g(uint n) public pure returns (uint) {
        for (uint i = 0; ; i++) {
            if (i > n) {
                break;
            }
        }
        return n;
    }
}`)
	require.Empty(t, errorMessages(ns))

	f := functionNamed(t, ns, "f")
	require.Len(t, f.Body, 1)
	body := f.Body[0].(*Block)
	assert.False(t, body.IsReachable)
	loop := body.Statements[0].(*While)
	assert.False(t, loop.IsReachable)

	g := functionNamed(t, ns, "g")
	forLoop := g.Body[0].(*Block).Statements[0].(*For)
	assert.True(t, forLoop.IsReachable, "a break makes the code after the loop reachable")
	assert.Nil(t, forLoop.Cond)
	assert.NotNil(t, forLoop.Next)
}

func TestModifierPlaceholder(t *testing.T) {
	ns := resolveSource(t, `contract C {
    modifier m() {
        require(true);
    }
    function f() public pure {
        _;
    }
}`)
	msgs := errorMessages(ns)
	assert.Contains(t, msgs, "missing '_' in modifier")
	assert.Contains(t, msgs, "'_' statement only permitted in modifiers")
}

func TestModifierInvocation(t *testing.T) {
	ns := resolveSource(t, `contract C {
    uint owner;
    modifier only(uint who) {
        require(who == owner);
        _;
    }
    function f(uint caller) public view only(caller) {
    }
    function g() public view nope {
    }
}`)
	assert.Equal(t, []string{"unknown modifier 'nope'"}, errorMessages(ns))

	f := functionNamed(t, ns, "f")
	require.Len(t, f.Modifiers, 1)
	call := f.Modifiers[0].(*InternalFunctionCall)
	assert.Equal(t, "only", ns.Functions[call.FunctionNo].Name)
	assert.Len(t, call.Args, 1)
}

func TestAmbiguousEmit(t *testing.T) {
	source := `contract C {
    event E(uint indexed a);
    event E(uint a);
    function f() public {
        emit E(1);
    }
}`
	ns := resolveSource(t, source)
	assert.Contains(t, errorMessages(ns), "emit can be resolved to multiple events")

	ns = resolveSource(t, "pragma solidity ^0.5.0;\n"+source)
	assert.Empty(t, errorMessages(ns))
	assert.Equal(t, 1, countContaining(warningMessages(ns), "emit can be resolved to multiple incompatible events"))

	f := functionNamed(t, ns, "f")
	emit := f.Body[0].(*Block).Statements[0].(*Emit)
	assert.Equal(t, []int{emit.EventNo}, f.EmitsEvents)
	assert.True(t, ns.Events[emit.EventNo].Used)
}

func TestEmitWithoutMatchingEvent(t *testing.T) {
	ns := resolveSource(t, `contract C {
    event E(uint a);
    event E(bool b);
    event F(uint a, uint b);
    function f() public {
        emit E("x");
    }
    function g() public {
        emit F(1);
    }
}`)
	msgs := errorMessages(ns)
	assert.Contains(t, msgs, "cannot find event with matching signature")
	assert.Contains(t, msgs, "event type 'F' has 2 fields, 1 provided")
}

func TestEmitNamedArguments(t *testing.T) {
	ns := resolveSource(t, `contract C {
    event E(uint a, bool b);
    event G(uint, bool b);
    function f() public {
        emit E({b: true, a: 1});
    }
    function g() public {
        emit G({b: true});
    }
}`)
	assert.Equal(t, []string{"event cannot be emitted with named fields as 1 of its fields do not have names"}, errorMessages(ns))

	f := functionNamed(t, ns, "f")
	emit := f.Body[0].(*Block).Statements[0].(*Emit)
	require.Len(t, emit.Args, 2)
	_, isNumber := emit.Args[0].(*NumberLiteral)
	assert.True(t, isNumber, "arguments are in field order")
}

func TestRevert(t *testing.T) {
	ns := resolveSource(t, `contract C {
    error Unauthorized(address caller);
    function f() public view {
        revert Unauthorized(msg.sender, 1);
    }
    function g() public pure {
        revert("a", "b");
    }
    function h() public pure {
        revert Unauthorized({who: address(0)});
    }
}`)
	msgs := errorMessages(ns)
	assert.Contains(t, msgs, "error 'Unauthorized' has 1 fields, 2 provided")
	assert.Contains(t, msgs, "revert takes either no argument or a single reason string argument, 2 provided")
	assert.Contains(t, msgs, "error 'Unauthorized' has no field called 'who'")
	assert.Contains(t, msgs, "missing field 'caller'")
}

func TestRevertIsUnreachable(t *testing.T) {
	ns := resolveSource(t, `contract C {
    error Bad(uint code);
    function f(uint n) public pure returns (uint) {
        if (n > 1) {
            revert Bad(n);
        } else {
            revert("too small");
        }
    }
}`)
	require.Empty(t, errorMessages(ns))
	f := functionNamed(t, ns, "f")
	assert.False(t, f.Body[0].(*Block).IsReachable)
	assert.True(t, ns.Errors[0].Used)
}

func TestTryRequiresExternalCall(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function g() internal pure returns (uint) {
        return 1;
    }
    function f() public {
        try g() returns (uint v) {
            v = 1;
        } catch {
        }
    }
}`)
	assert.Contains(t, errorMessages(ns), "try only supports external calls or constructor calls")
}

func TestTryNotOnSolana(t *testing.T) {
	ns := resolveFor(t, Solana(), `contract C {
    function f() public {
        try new C() {
        } catch {
        }
    }
}`)
	assert.Contains(t, errorMessages(ns), "The try-catch statement is not supported on Solana")
}

func TestAssemblyFlags(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure {
        assembly ("memory-safe", "memory-safe", "other") {
        }
    }
    function g() public pure {
        assembly "yul" {
        }
    }
}`)
	assert.Equal(t, []string{"only evmasm dialect is supported"}, errorMessages(ns))
	warnings := warningMessages(ns)
	assert.Contains(t, warnings, "flag 'memory-safe' already specified")
	assert.Contains(t, warnings, "flag 'other' not supported")

	f := functionNamed(t, ns, "f")
	asm := f.Body[0].(*Block).Statements[0].(*Assembly)
	assert.True(t, asm.MemorySafe)
}

func TestDestructure(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function g() internal pure returns (uint, bool) {
        return (1, true);
    }
    function f() public pure returns (uint) {
        (uint a, bool b) = g();
        uint c;
        (c, ) = g();
        if (b) {
            return a + c;
        }
        return a;
    }
    function h() public pure {
        (uint a, bool b, uint c) = g();
    }
}`)
	assert.Equal(t, []string{"destructuring assignment has 3 elements on the left and 2 on the right"}, errorMessages(ns))

	f := functionNamed(t, ns, "f")
	stmts := f.Body[0].(*Block).Statements
	d := stmts[0].(*Destructure)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, DestructureVariableDecl, d.Fields[0].Kind)

	d = stmts[2].(*Destructure)
	assert.Equal(t, DestructureExpression, d.Fields[0].Kind)
	assert.Equal(t, DestructureNone, d.Fields[1].Kind)
}

func TestReturnValueCount(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure returns (uint, uint) {
        return 1;
    }
    function g() public pure {
        return 1;
    }
    function h() public pure returns (uint a) {
        return;
    }
}`)
	msgs := errorMessages(ns)
	assert.Len(t, msgs, 2)
	assert.Contains(t, msgs, "incorrect number of return values, expected 2 but got 1")
	assert.Contains(t, msgs, "function has no return values")
}

func TestDeleteStatement(t *testing.T) {
	ns := resolveSource(t, `contract C {
    mapping(uint => uint) m;
    uint[] arr;
    function f() public {
        delete m;
    }
    function g() public {
        delete arr;
    }
}`)
	assert.Equal(t, []string{"'delete' cannot be applied to mapping type"}, errorMessages(ns))

	g := functionNamed(t, ns, "g")
	del := g.Body[0].(*Block).Statements[0].(*Delete)
	assert.Equal(t, DynamicArray(uint256), del.Ty)
}

func TestStorageReturnNeedsValue(t *testing.T) {
	ns := resolveSource(t, `contract C {
    uint[] arr;
    function f() internal view returns (uint[] storage) {
    }
}`)
	assert.Contains(t, errorMessages(ns), "storage reference must be given value with a return statement")
}

func TestUnusedVariables(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure {
        uint a;
        uint b = 1;
        uint c = 2;
        c += 1;
        uint d = c;
        d++;
    }
}`)
	require.Empty(t, errorMessages(ns))
	warnings := warningMessages(ns)
	assert.Contains(t, warnings, "local variable 'a' is declared but never used")
	assert.Contains(t, warnings, "local variable 'b' has been assigned, but never read")
	assert.Equal(t, 0, countContaining(warnings, "'c'"))
}

func TestVariableDeclarationChecks(t *testing.T) {
	ns := resolveSource(t, `contract C {
    function f() public pure {
        uint memory a = 1;
        mapping(uint => uint) m;
        a = 2;
    }
}`)
	msgs := errorMessages(ns)
	assert.Contains(t, msgs, "data location 'memory' only allowed for array, struct or mapping type")
	assert.Contains(t, msgs, "mapping only allowed in storage")
}

const tryCatchSource = `interface I {
    function g() external returns (uint);
}
contract C {
    function f(I i) public {
        try i.g() returns (uint v) {
            v = 1;
        } %s
    }
}`

func TestTryCatchClauses(t *testing.T) {
	tests := []struct {
		name    string
		catches string
		err     string
	}{
		{"duplicate catch all", `catch {} catch {}`, "duplicate catch clause"},
		{"duplicate error", `catch Error(string memory a) {} catch Error(string memory b) {}`, "duplicate 'Error' catch clause"},
		{"error takes string", `catch Error(bytes memory a) {}`, "catch Error(...) can only take 'string memory', not "},
		{"panic takes uint256", `catch Panic(string memory a) {}`, "catch Panic(...) can only take 'uint256', not "},
		{"catch all takes bytes", `catch (string memory a) {}`, "catch can only take 'bytes memory', not "},
		{"unknown clause", `catch Oops(bytes memory a) {}`, "only catch 'Error' and 'Panic' are supported, not 'Oops'"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ns := resolveSource(t, fmt.Sprintf(tryCatchSource, test.catches))
			msgs := errorMessages(ns)
			require.Len(t, msgs, 1, "%v", msgs)
			assert.Contains(t, msgs[0], test.err)
		})
	}

	ns := resolveSource(t, fmt.Sprintf(tryCatchSource,
		`catch Error(string memory reason) {} catch Panic(uint code) {} catch (bytes memory data) {}`))
	assert.Empty(t, errorMessages(ns))
	f := functionNamed(t, ns, "f")
	stmt := f.Body[0].(*Block).Statements[0].(*TryCatch)
	assert.Len(t, stmt.Errors, 2)
	assert.NotNil(t, stmt.CatchAll)
}

func TestTryCatchReachability(t *testing.T) {
	source := `interface I {
    function g() external returns (uint);
}
contract C {
    function f(I i) public {
        try i.g() {
            revert("ok");
        } catch {
            %s
        }
    }
}`
	tests := []struct {
		name      string
		catchBody string
		reachable bool
	}{
		{"both sides revert", `revert("failed");`, false},
		{"catch falls through", ``, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ns := resolveSource(t, fmt.Sprintf(source, test.catchBody))
			require.Empty(t, errorMessages(ns))
			f := functionNamed(t, ns, "f")
			body := f.Body[0].(*Block)
			assert.Equal(t, test.reachable, body.Statements[0].(*TryCatch).IsReachable)
			assert.Equal(t, test.reachable, body.IsReachable)
		})
	}
}

func TestShadowingWarnings(t *testing.T) {
	ns := resolveSource(t, `contract C {
    uint balance;
    function owner() public pure returns (uint) {
        return 1;
    }
    function f(uint balance) public pure returns (uint) {
        uint owner = 2;
        return balance + owner;
    }
}`)
	assert.Empty(t, errorMessages(ns))
	warnings := warningMessages(ns)
	assert.Contains(t, warnings, "declaration of 'balance' shadows state variable")
	assert.Contains(t, warnings, "declaration of 'owner' shadows function")
}

func TestDestructureIntoConstantOrImmutable(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		err  string
	}{
		{"constant", `(K, ) = g();`, "cannot assign to constant 'K'"},
		{"immutable", `(M, ) = g();`, "cannot assign to immutable 'M' outside of constructor"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ns := resolveSource(t, fmt.Sprintf(`contract C {
    uint constant K = 1;
    uint immutable M = 2;
    function g() internal pure returns (uint, uint) {
        return (1, 2);
    }
    function f() public {
        %s
    }
}`, test.stmt))
			assert.Equal(t, []string{test.err}, errorMessages(ns))
		})
	}
}

func TestEmitPicksMatchingOverload(t *testing.T) {
	ns := resolveSource(t, `contract C {
    event E(uint a);
    event E(bool b);
    function f() public {
        emit E(true);
    }
    function g() public {
        emit E(1);
    }
}`)
	require.Empty(t, errorMessages(ns))

	emit := functionNamed(t, ns, "f").Body[0].(*Block).Statements[0].(*Emit)
	assert.Equal(t, Bool{}, ns.Events[emit.EventNo].Fields[0].Ty)

	emit = functionNamed(t, ns, "g").Body[0].(*Block).Statements[0].(*Emit)
	assert.Equal(t, Uint{Bits: 256}, ns.Events[emit.EventNo].Fields[0].Ty)
}
