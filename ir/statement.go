package ir

// Statement represents a statement in the IR.
// Statements have side effects and structured control flow, but do not produce values.
// The function body is represented as a tree of statements, with references to expressions.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
// This is a simplified version without span tracking (spans will be added later if needed).
type Block []Statement

// Range represents a range of expression handles for Emit statements.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle // Exclusive
}

// StmtEmit emits a range of expressions, making them visible to all statements that follow.
// This is used to mark when expressions should be evaluated in SSA form.
type StmtEmit struct {
	Range Range
}

func (StmtEmit) statementKind() {}

// StmtBlock contains a sequence of statements to be executed in order.
type StmtBlock struct {
	Block Block
}

func (StmtBlock) statementKind() {}

// StmtIf conditionally executes one of two blocks based on the condition value.
// There are no phi instructions: to use a value computed in Accept or
// Reject after the If statement, store it in a LocalVariable first.
type StmtIf struct {
	Condition ExpressionHandle // Must be a bool expression
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtStore stores a value at an address through a pointer.
// The value's type must match the pointee type.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtCall calls a function.
// If Result is set, it must be a CallResult expression.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
	Result    *ExpressionHandle
}

func (StmtCall) statementKind() {}
