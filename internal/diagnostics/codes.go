package diagnostics

// Diagnostic codes for the compiler. Codes are stable and show up in the
// rendered output as error[E0001].
//
// Code ranges:
// E0001-E0099: Name resolution and semantic errors
// E0100-E0199: Parser errors
// E0200-E0299: Type system and conversion errors
// E0300-E0399: Constant evaluation errors
// E0400-E0499: Contract, event and error declaration errors
// E0500-E0599: Target specific errors
// E0600-E0699: Flow control errors
// W0001-W0099: Warnings

const (
	// E0001: Variable resolution errors
	ErrorUndefinedVariable = "E0001"

	// E0002: Function resolution errors
	ErrorUndefinedFunction = "E0002"

	// E0003: Type compatibility errors
	ErrorTypeMismatch = "E0003"

	// E0004: Return value errors
	ErrorInvalidReturn = "E0004"

	// E0005: Struct or error field access errors
	ErrorFieldNotFound = "E0005"

	// E0006: Duplicate named arguments
	ErrorDuplicateField = "E0006"

	// E0007: Missing named arguments
	ErrorMissingField = "E0007"

	// E0008: Binary operation type errors
	ErrorInvalidBinaryOperation = "E0008"

	// E0009: Duplicate declaration errors
	ErrorDuplicateDeclaration = "E0009"

	// E0010: Invalid attribute or data location
	ErrorInvalidAttribute = "E0010"

	// E0013: Function call argument errors
	ErrorInvalidArguments = "E0013"

	// E0014: Assignment validation errors
	ErrorInvalidAssignment = "E0014"

	// E0015: Unary operation errors
	ErrorInvalidOperation = "E0015"

	// E0016: Generic semantic error
	ErrorGenericSemantic = "E0016"

	// E0019: Storage location errors
	ErrorStorageLocation = "E0019"

	// E0020: Void function in expression context
	ErrorVoidInExpression = "E0020"

	// E0100: Syntax errors
	ErrorSyntax = "E0100"

	// E0101: Unrecognised tokens
	ErrorScan = "E0101"

	// E0200: Implicit conversion errors
	ErrorConversion = "E0200"

	// E0201: Invalid type expression
	ErrorInvalidType = "E0201"

	// E0300: Literal does not fit its type
	ErrorNumericOverflow = "E0300"

	// E0301: Division or modulo by zero in a constant
	ErrorDivideByZero = "E0301"

	// E0302: Expression is not a compile time constant
	ErrorNotConstant = "E0302"

	// E0303: Shift or power out of range
	ErrorShiftRange = "E0303"

	// E0400: Event resolution errors
	ErrorEventResolution = "E0400"

	// E0401: Custom error and revert errors
	ErrorRevert = "E0401"

	// E0402: Try and catch errors
	ErrorTryCatch = "E0402"

	// E0500: Feature not available on the selected target
	ErrorTargetUnsupported = "E0500"

	// E0600: Missing return statement
	ErrorMissingReturn = "E0600"

	// E0601: break or continue outside of a loop
	ErrorLoopControl = "E0601"

	// E0602: Modifier placeholder errors
	ErrorModifierPlaceholder = "E0602"

	// W0001: Unused variable warning
	WarningUnusedVariable = "W0001"

	// W0002: Unreachable code warning
	WarningUnreachableCode = "W0002"

	// W0003: Emit matches several legacy events
	WarningAmbiguousEmit = "W0003"

	// W0004: delete on something that is not a storage reference
	WarningDeleteNotStorage = "W0004"

	// W0005: Unsupported or duplicate assembly flag
	WarningAssemblyFlag = "W0005"
)

// GetErrorDescription returns a human-readable description of the code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUndefinedVariable:
		return "Name is used but not declared in the current scope"
	case ErrorUndefinedFunction:
		return "Function is called but not declared"
	case ErrorTypeMismatch:
		return "Expression type does not match expected type"
	case ErrorInvalidReturn:
		return "Return statement does not match the declared return values"
	case ErrorFieldNotFound:
		return "Field does not exist"
	case ErrorDuplicateField:
		return "Duplicate named argument"
	case ErrorMissingField:
		return "Required named argument missing"
	case ErrorInvalidBinaryOperation:
		return "Binary operation not supported for these types"
	case ErrorDuplicateDeclaration:
		return "Duplicate declaration found"
	case ErrorInvalidAttribute:
		return "Invalid or unsupported attribute"
	case ErrorInvalidArguments:
		return "Function call has invalid arguments"
	case ErrorInvalidAssignment:
		return "Invalid assignment target"
	case ErrorInvalidOperation:
		return "Invalid unary operation"
	case ErrorGenericSemantic:
		return "Semantic analysis error"
	case ErrorStorageLocation:
		return "Data location not permitted here"
	case ErrorVoidInExpression:
		return "Function without return values used as a value"
	case ErrorSyntax:
		return "Source text could not be parsed"
	case ErrorScan:
		return "Source text contains an unrecognised token"
	case ErrorConversion:
		return "Value cannot be implicitly converted"
	case ErrorInvalidType:
		return "Expression is not a valid type"
	case ErrorNumericOverflow:
		return "Constant value does not fit into its type"
	case ErrorDivideByZero:
		return "Constant expression divides by zero"
	case ErrorNotConstant:
		return "Expression must be a compile time constant"
	case ErrorShiftRange:
		return "Shift amount or exponent out of range"
	case ErrorEventResolution:
		return "Emit does not match a declared event"
	case ErrorRevert:
		return "Revert arguments do not match the error"
	case ErrorTryCatch:
		return "Invalid try or catch clause"
	case ErrorTargetUnsupported:
		return "Feature not supported on the selected target"
	case ErrorMissingReturn:
		return "Function declares return values but has no return statement"
	case ErrorLoopControl:
		return "break or continue used outside of a loop"
	case ErrorModifierPlaceholder:
		return "Modifier placeholder '_' missing or misplaced"
	case WarningUnusedVariable:
		return "Variable is declared but never used"
	case WarningUnreachableCode:
		return "Code is unreachable"
	case WarningAmbiguousEmit:
		return "Emit resolves to several events"
	case WarningDeleteNotStorage:
		return "delete applied to a value that is not in storage"
	case WarningAssemblyFlag:
		return "Assembly flag ignored"
	default:
		return "Unknown error code"
	}
}

// IsWarning returns true if the code represents a warning rather than an error
func IsWarning(code string) bool {
	return code != "" && code[0] == 'W'
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case IsWarning(code):
		return "Warning"
	case code >= "E0001" && code < "E0100":
		return "Semantic Analysis"
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0200" && code < "E0300":
		return "Type System"
	case code >= "E0300" && code < "E0400":
		return "Constant Evaluation"
	case code >= "E0400" && code < "E0500":
		return "Contract"
	case code >= "E0500" && code < "E0600":
		return "Target"
	case code >= "E0600" && code < "E0700":
		return "Flow Control"
	default:
		return "Unknown"
	}
}
