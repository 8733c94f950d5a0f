package ast

// Parameter is one formal parameter of a function.
type Parameter struct {
	Name string
	Type DataType
	// ArraySize is types.DynamicSize for scalar parameters.
	ArraySize int
}

// Function is one source-language function definition.
type Function struct {
	Name       string
	ReturnType DataType
	Params     []Parameter
	Body       *Block
}

// ExternFunc is a forward-declared, externally-defined function: its
// body lives outside the translation unit (FFI), but codegen still
// needs its signature to emit a forward declaration and to type-check
// call sites.
type ExternFunc struct {
	Name       string
	ReturnType DataType
	ParamTypes []DataType
}

// Program is a whole compilation unit: an ordered function list plus
// the extern signatures codegen must forward-declare.
type Program struct {
	Functions []*Function
	Externs   []*ExternFunc
}
