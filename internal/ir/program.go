package ir

import "tlcc/internal/types"

// Program is an ordered function list. Function order is
// preserved through peephole and codegen because codegen emits
// forward declarations from this order and synthesizes/wraps `main`
// last.
type Program struct {
	Functions []*Function
	Externs   []ExternSignature
}

// ExternSignature is a forward-declared externally-defined function
// codegen must declare but never define (FFI discovery is
// external; codegen only emits the declaration).
type ExternSignature struct {
	Name       string
	ReturnType types.DataType
	ParamTypes []types.DataType
}
