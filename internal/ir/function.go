package ir

import (
	"strconv"

	"tlcc/internal/types"
)

// LoopContext is one entry in the enclosing-loop stack a function
// threads through statement lowering so break/continue can resolve
// their jump targets. Pushing on loop entry and
// popping on loop exit is mandatory on every exit path.
type LoopContext struct {
	StartLabel string
	EndLabel   string
}

// Function is one lowered function.
type Function struct {
	Name         string
	ReturnType   types.DataType
	Params       []*Operand
	Instructions []*Instruction

	tempCounter  int
	labelCounter int
	loopStack    []*LoopContext
}

// NewFunction creates an empty function ready for lowering.
func NewFunction(name string, returnType types.DataType) *Function {
	return &Function{Name: name, ReturnType: returnType}
}

// AddInstruction appends instr to the function's instruction stream.
func (f *Function) AddInstruction(instr *Instruction) {
	f.Instructions = append(f.Instructions, instr)
}

// AddParam appends a parameter operand, in declaration order.
func (f *Function) AddParam(param *Operand) {
	f.Params = append(f.Params, param)
}

// NewTemp allocates the next monotonic temp id for this function.
func (f *Function) NewTemp() int {
	id := f.tempCounter
	f.tempCounter++
	return id
}

// NewLabel allocates the next monotonic "L<n>" label for this function.
func (f *Function) NewLabel() string {
	n := f.labelCounter
	f.labelCounter++
	return "L" + strconv.Itoa(n)
}

// EnterLoop pushes a new loop context, making it the innermost loop
// break/continue resolve against.
func (f *Function) EnterLoop(startLabel, endLabel string) {
	f.loopStack = append(f.loopStack, &LoopContext{StartLabel: startLabel, EndLabel: endLabel})
}

// ExitLoop pops the innermost loop context. Calling it without a
// matching EnterLoop is a generator bug.
func (f *Function) ExitLoop() {
	f.loopStack = f.loopStack[:len(f.loopStack)-1]
}

// CurrentLoop returns the innermost enclosing loop context, or nil if
// none is active.
func (f *Function) CurrentLoop() *LoopContext {
	if len(f.loopStack) == 0 {
		return nil
	}
	return f.loopStack[len(f.loopStack)-1]
}
