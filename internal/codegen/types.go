package codegen

import (
	"tlcc/internal/irerr"
	"tlcc/internal/types"
)

// cType maps a source-language scalar type to its C spelling. Array
// is handled by callers that also know the element type/array-ness,
// since types.DataType alone does not distinguish "array of Int" from
// "Int".
func cType(dt types.DataType) (string, error) {
	switch dt {
	case types.Int:
		return "int64_t", nil
	case types.Bool:
		return "bool", nil
	case types.Void:
		return "void", nil
	case types.Float:
		return "float", nil
	case types.Double:
		return "double", nil
	case types.String:
		return "char*", nil
	case types.Null:
		return "void*", nil
	default:
		return "", irerr.NewCodegenError("operand has no known C type (DataType=%v)", dt)
	}
}

// printfSpec returns the printf conversion spec PRINT should use for
// a value of type dt, for the PRINT opcode.
func printfSpec(dt types.DataType) (string, error) {
	switch dt {
	case types.Int:
		return "%lld", nil
	case types.Bool:
		return "%d", nil
	case types.Float, types.Double:
		return "%g", nil
	case types.String:
		return "%s", nil
	default:
		return "", irerr.NewCodegenError("no printf conversion for DataType=%v", dt)
	}
}
