package parser

import (
	"testing"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, source string) *pt.SourceUnit {
	t.Helper()
	unit, parseErrors, scanErrors := ParseSource(0, "test.sol", source)
	require.Empty(t, scanErrors, "Should have no scan errors")
	require.Empty(t, parseErrors, "Should have no parse errors")
	require.NotNil(t, unit)
	return unit
}

func firstFunction(t *testing.T, unit *pt.SourceUnit) *pt.FunctionDefinition {
	t.Helper()
	for _, part := range unit.Parts {
		c, ok := part.(*pt.ContractDefinition)
		if !ok {
			continue
		}
		for _, cp := range c.Parts {
			if f, ok := cp.(*pt.FunctionDefinition); ok {
				return f
			}
		}
	}
	t.Fatal("no function found")
	return nil
}

func TestParseEmptyContract(t *testing.T) {
	unit := parseOK(t, `contract Empty {}`)

	require.Len(t, unit.Parts, 1)
	c, ok := unit.Parts[0].(*pt.ContractDefinition)
	require.True(t, ok, "Part should be a contract")
	assert.Equal(t, "Empty", c.Name.Name)
	assert.Equal(t, pt.KindContract, c.Kind)
	assert.Empty(t, c.Parts)
}

func TestParsePragma(t *testing.T) {
	unit := parseOK(t, `pragma solidity ^0.5.0;`)

	require.Len(t, unit.Parts, 1)
	pragma, ok := unit.Parts[0].(*pt.PragmaDirective)
	require.True(t, ok)
	assert.Equal(t, "solidity", pragma.Name.Name)
	assert.Equal(t, "^0.5.0", pragma.Value)
}

func TestParseContractItems(t *testing.T) {
	source := `abstract contract C {
    struct S { uint a; bool b; }
    event Transfer(address indexed from, uint256 value) anonymous;
    error Unauthorized(address caller);
    uint256 public constant MAX = 100;
    mapping(address => uint) balances;
    constructor() {}
    modifier onlyOwner { _; }
    function f(uint a, bytes memory b) public pure returns (uint) { return a; }
}`

	unit := parseOK(t, source)
	c := unit.Parts[0].(*pt.ContractDefinition)
	assert.Equal(t, pt.KindAbstract, c.Kind)
	require.Len(t, c.Parts, 8)

	s := c.Parts[0].(*pt.StructDefinition)
	assert.Equal(t, "S", s.Name.Name)
	assert.Len(t, s.Fields, 2)

	ev := c.Parts[1].(*pt.EventDefinition)
	assert.True(t, ev.Anonymous)
	require.Len(t, ev.Fields, 2)
	assert.True(t, ev.Fields[0].Indexed)
	assert.Equal(t, "from", ev.Fields[0].Name.Name)

	errDef := c.Parts[2].(*pt.ErrorDefinition)
	assert.Equal(t, "Unauthorized", errDef.Name.Name)
	assert.Len(t, errDef.Fields, 1)

	max := c.Parts[3].(*pt.VariableDefinition)
	assert.True(t, max.Has(pt.AttrConstant))
	assert.True(t, max.Has(pt.AttrPublic))
	assert.NotNil(t, max.Initializer)

	m := c.Parts[4].(*pt.VariableDefinition)
	_, isMapping := m.Ty.(*pt.Mapping)
	assert.True(t, isMapping)

	ctor := c.Parts[5].(*pt.FunctionDefinition)
	assert.Equal(t, pt.FunctionTyConstructor, ctor.Ty)

	mod := c.Parts[6].(*pt.FunctionDefinition)
	assert.Equal(t, pt.FunctionTyModifier, mod.Ty)
	assert.Equal(t, "onlyOwner", mod.Name.Name)
	assert.Empty(t, mod.Params)

	f := c.Parts[7].(*pt.FunctionDefinition)
	assert.Equal(t, "f", f.Name.Name)
	assert.Equal(t, "public", f.Visibility)
	assert.Equal(t, "pure", f.Mutability)
	require.Len(t, f.Params, 2)
	require.NotNil(t, f.Params[1].Param.Storage)
	assert.Equal(t, pt.Memory, f.Params[1].Param.Storage.Kind)
	assert.Len(t, f.Returns, 1)
}

func TestParseOperatorPrecedence(t *testing.T) {
	unit := parseOK(t, `contract C { function f() public { x = 1 + 2 * 3 ** 2 ** 2; } }`)

	f := firstFunction(t, unit)
	stmt := f.Body.Statements[0].(*pt.ExpressionStmt)
	assign := stmt.Expr.(*pt.Assign)
	assert.Equal(t, "=", assign.Op)

	add := assign.Right.(*pt.BinaryExpr)
	assert.Equal(t, "+", add.Op)
	mul := add.Right.(*pt.BinaryExpr)
	assert.Equal(t, "*", mul.Op)
	pow := mul.Right.(*pt.BinaryExpr)
	assert.Equal(t, "**", pow.Op)

	// ** is right associative
	_, leftIsLiteral := pow.Left.(*pt.NumberLiteral)
	assert.True(t, leftIsLiteral)
	inner := pow.Right.(*pt.BinaryExpr)
	assert.Equal(t, "**", inner.Op)
}

func TestParseStatements(t *testing.T) {
	source := `contract C {
    function f(uint n) public returns (uint r) {
        uint[] memory a = new uint[](n);
        for (uint i = 0; i < n; i++) {
            if (i == 3) { continue; } else { break; }
        }
        while (true) {}
        do { n--; } while (n > 0);
        unchecked { r = n - 1; }
        (uint x, , bool y) = g();
        emit E(1, 2);
        revert Unauthorized({caller: msg.sender});
    }
}`

	f := firstFunction(t, parseOK(t, source))
	stmts := f.Body.Statements
	require.Len(t, stmts, 8)

	decl := stmts[0].(*pt.VariableDefinitionStmt)
	assert.Equal(t, "a", decl.Decl.Name.Name)
	require.NotNil(t, decl.Decl.Storage)
	_, isCall := decl.Initializer.(*pt.FunctionCall)
	assert.True(t, isCall)

	forStmt := stmts[1].(*pt.ForStmt)
	assert.NotNil(t, forStmt.Init)
	assert.NotNil(t, forStmt.Cond)
	assert.NotNil(t, forStmt.Next)

	_, isWhile := stmts[2].(*pt.WhileStmt)
	assert.True(t, isWhile)
	_, isDo := stmts[3].(*pt.DoWhileStmt)
	assert.True(t, isDo)

	block := stmts[4].(*pt.Block)
	assert.True(t, block.Unchecked)

	destructure := stmts[5].(*pt.ExpressionStmt).Expr.(*pt.Assign)
	list := destructure.Left.(*pt.List)
	require.Len(t, list.Entries, 3)
	assert.Nil(t, list.Entries[1].Param)
	assert.Equal(t, "y", list.Entries[2].Param.Name.Name)

	_, isEmit := stmts[6].(*pt.EmitStmt)
	assert.True(t, isEmit)

	revert := stmts[7].(*pt.RevertNamedArgsStmt)
	assert.Equal(t, "Unauthorized", revert.Path.String())
	require.Len(t, revert.Args, 1)
	assert.Equal(t, "caller", revert.Args[0].Name.Name)
}

func TestParseTryCatch(t *testing.T) {
	source := `contract C {
    function f(D d) public {
        try d.g() returns (uint v) {
            v;
        } catch Error(string memory reason) {
        } catch (bytes memory data) {
        }
    }
}`

	f := firstFunction(t, parseOK(t, source))
	try := f.Body.Statements[0].(*pt.TryStmt)
	assert.True(t, try.HasReturns)
	assert.Len(t, try.Returns, 1)
	require.Len(t, try.Catches, 2)
	assert.Equal(t, "Error", try.Catches[0].Name.Name)
	assert.Nil(t, try.Catches[1].Name)
	assert.NotNil(t, try.Catches[1].Param)
}

func TestParseAssembly(t *testing.T) {
	source := `contract C {
    function f() public {
        assembly "evmasm" ("memory-safe") { let x := add(1, 2) }
    }
}`

	f := firstFunction(t, parseOK(t, source))
	asm := f.Body.Statements[0].(*pt.AssemblyStmt)
	require.NotNil(t, asm.Dialect)
	assert.Equal(t, "evmasm", asm.Dialect.Value)
	require.Len(t, asm.Flags, 1)
	assert.Equal(t, "memory-safe", asm.Flags[0].Value)
	assert.Contains(t, asm.Source, "add(1, 2)")
}

func TestParseLiterals(t *testing.T) {
	source := `contract C {
    function f() public {
        x = 1_000e3;
        x = 0x1F;
        x = 1.5e2;
        x = "a" "b\n";
        x = hex"00ff";
    }
}`

	f := firstFunction(t, parseOK(t, source))
	rhs := func(i int) pt.Expression {
		return f.Body.Statements[i].(*pt.ExpressionStmt).Expr.(*pt.Assign).Right
	}

	num := rhs(0).(*pt.NumberLiteral)
	assert.Equal(t, "1000", num.Value)
	assert.Equal(t, "3", num.Exponent)

	hexNum := rhs(1).(*pt.HexNumberLiteral)
	assert.Equal(t, "0x1F", hexNum.Value)

	rat := rhs(2).(*pt.RationalNumberLiteral)
	assert.Equal(t, "1", rat.Integer)
	assert.Equal(t, "5", rat.Fraction)
	assert.Equal(t, "2", rat.Exponent)

	str := rhs(3).(*pt.StringLiteral)
	assert.Equal(t, "ab\n", str.Value)

	hexLit := rhs(4).(*pt.HexLiteral)
	assert.Equal(t, []byte{0x00, 0xff}, hexLit.Bytes)
}

func TestParseErrorRecovery(t *testing.T) {
	source := `contract C {
    function f() public {
        x = ;
        y = 2;
    }
}`

	unit, parseErrors, _ := ParseSource(0, "test.sol", source)
	assert.NotEmpty(t, parseErrors)
	require.NotNil(t, unit)
	require.Len(t, unit.Parts, 1)
}

func TestScanIllegalCharacter(t *testing.T) {
	_, scanErrors := Scan(0, "test.sol", "contract C { # }")
	require.Len(t, scanErrors, 1)
	assert.Equal(t, "unrecognised token '#'", scanErrors[0].Message)
}
