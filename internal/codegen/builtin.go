package codegen

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the ripemd160 builtin needs it
	"golang.org/x/crypto/sha3"

	"github.com/salaheldinsoliman/solang/internal/pt"
	"github.com/salaheldinsoliman/solang/internal/sema"
)

// builtin lowers a builtin call. Builtins which read the environment or
// hash their input stay expressions; the others become instructions.
func (b *builder) builtin(e *sema.Builtin) []sema.Expression {
	switch e.Kind {
	case sema.BuiltinAssert:
		cond := b.expression(e.Args[0])
		b.check(cond, encodeWithSelector(panicSelector, []sema.Type{uint256Ty}, []sema.Expression{
			&sema.NumberLiteral{Loc: pt.Codegen, Ty: uint256Ty, Value: big.NewInt(panicAssertFailure)},
		}))
		return nil

	case sema.BuiltinRequire:
		cond := b.expression(e.Args[0])
		var data sema.Expression
		if len(e.Args) > 1 {
			reason := b.expression(e.Args[1])
			data = encodeWithSelector(errorSelector, []sema.Type{sema.String{}}, []sema.Expression{reason})
		}
		b.check(cond, data)
		return nil

	case sema.BuiltinPrint:
		b.cfg.Add(b.vartab, &Print{Expr: b.expression(e.Args[0])})
		return nil

	case sema.BuiltinSelfDestruct:
		b.cfg.Add(b.vartab, &SelfDestruct{Recipient: b.expression(e.Args[0])})
		return nil

	case sema.BuiltinAbiEncode, sema.BuiltinAbiEncodePacked:
		args := b.expressions(e.Args)
		tys := make([]sema.Type, len(args))
		for i, arg := range args {
			tys[i] = arg.Type()
		}
		if e.Kind == sema.BuiltinAbiEncodePacked {
			return []sema.Expression{&sema.AbiEncode{Loc: e.Loc, Tys: tys, Packed: args}}
		}
		return []sema.Expression{&sema.AbiEncode{Loc: e.Loc, Tys: tys, Args: args}}

	case sema.BuiltinAbiDecode:
		data := b.expression(e.Args[0])
		res, values := b.results(e.Loc, e.Tys)
		b.cfg.Add(b.vartab, &AbiDecode{Res: res, ExceptionBlock: -1, Tys: e.Tys, Data: data})
		return values

	case sema.BuiltinArrayPush:
		return b.arrayPush(e)

	case sema.BuiltinArrayPop:
		return b.arrayPop(e)

	case sema.BuiltinArrayLength:
		array := b.expression(e.Args[0])
		if length, ok := arrayLength(b.cfg, e.Loc, array); ok {
			return []sema.Expression{length}
		}
		return []sema.Expression{&sema.Builtin{Loc: e.Loc, Tys: e.Tys, Kind: e.Kind, Args: []sema.Expression{array}}}
	}

	return []sema.Expression{&sema.Builtin{Loc: e.Loc, Tys: e.Tys, Kind: e.Kind, Args: b.expressions(e.Args)}}
}

// check continues in a new block when cond holds and reverts with data
// otherwise.
func (b *builder) check(cond, data sema.Expression) {
	success := b.cfg.NewBasicBlock("noassert")
	failure := b.cfg.NewBasicBlock("doassert")
	b.cfg.Add(b.vartab, &BranchCond{Cond: cond, True: success, False: failure})

	b.cfg.SetBasicBlock(failure)
	b.cfg.AddCodegen(b.vartab, &AssertFailure{Expr: data})

	b.cfg.SetBasicBlock(success)
}

func elemType(arrayTy sema.Type) sema.Type {
	if a, ok := sema.Deref(arrayTy).(sema.Array); ok {
		return a.Elem
	}
	return sema.Bytes{N: 1}
}

// memoryArray returns the variable holding a memory array, copying the
// array reference into a temporary when it is not a plain variable.
func (b *builder) memoryArray(array sema.Expression) int {
	if v, ok := array.(*sema.Variable); ok {
		return v.VarNo
	}
	temp := b.vartab.TempName("array", array.Type())
	b.cfg.AddCodegen(b.vartab, &Set{Loc: pt.Codegen, Res: temp, Expr: array})
	return temp
}

func (b *builder) arrayPush(e *sema.Builtin) []sema.Expression {
	arrayTy := e.Args[0].Type()
	elem := elemType(arrayTy)
	array := b.expression(e.Args[0])

	var value sema.Expression
	if len(e.Args) > 1 {
		value = b.expression(e.Args[1])
	}

	if _, inStorage := arrayTy.(sema.StorageRef); inStorage {
		ref := sema.StorageRef{Elem: elem}
		res := b.vartab.TempName("array_push", ref)
		b.cfg.Add(b.vartab, &PushStorage{Res: res, Ty: elem, Storage: array, Value: value})
		if len(e.Tys) == 0 {
			return nil
		}
		return []sema.Expression{&sema.Variable{Loc: e.Loc, Ty: ref, VarNo: res}}
	}

	arrayNo := b.memoryArray(array)
	res := b.vartab.TempName("array_push", elem)
	b.cfg.Add(b.vartab, &PushMemory{Res: res, Ty: elem, Array: arrayNo, Value: value})
	modifyTempArraySize(b.cfg, false, arrayNo, b.vartab)
	return nil
}

func (b *builder) arrayPop(e *sema.Builtin) []sema.Expression {
	arrayTy := e.Args[0].Type()
	elem := elemType(arrayTy)
	array := b.expression(e.Args[0])
	res := b.vartab.TempName("array_pop", elem)

	if _, inStorage := arrayTy.(sema.StorageRef); inStorage {
		b.cfg.Add(b.vartab, &PopStorage{Res: res, Ty: elem, Storage: array})
	} else {
		arrayNo := b.memoryArray(array)
		b.cfg.Add(b.vartab, &PopMemory{Res: res, Ty: elem, Array: arrayNo})
		modifyTempArraySize(b.cfg, true, arrayNo, b.vartab)
	}
	return []sema.Expression{&sema.Variable{Loc: e.Loc, Ty: elem, VarNo: res}}
}

// Hash computes one of the hash builtins over data.
func Hash(kind sema.BuiltinKind, data []byte) []byte {
	switch kind {
	case sema.BuiltinKeccak256:
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		return h.Sum(nil)
	case sema.BuiltinSha256:
		sum := sha256.Sum256(data)
		return sum[:]
	case sema.BuiltinRipemd160:
		h := ripemd160.New()
		h.Write(data)
		return h.Sum(nil)
	case sema.BuiltinBlake2_128:
		h, err := blake2b.New(16, nil)
		if err != nil {
			panic(err)
		}
		h.Write(data)
		return h.Sum(nil)
	case sema.BuiltinBlake2_256:
		sum := blake2b.Sum256(data)
		return sum[:]
	}
	panic(fmt.Sprintf("builtin %s is not a hash", kind))
}
