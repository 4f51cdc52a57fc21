package script

// Node is a node of a parsed script's expression tree. Kind returns the
// grammar's name for the node (for example "CallExpression" or
// "StringLiteral").
type Node interface {
	Kind() string
}

// Call is a function invocation. Args are in source order.
type Call struct {
	Callee Node
	Args   []Node
}

// Kind implements Node.
func (*Call) Kind() string { return "CallExpression" }

// Literal is a constant value. Value holds the decoded value for strings and
// the source text for numbers, booleans and regular expressions. It is empty
// for null.
type Literal struct {
	Type  string
	Value string
}

// Kind implements Node.
func (l *Literal) Kind() string { return l.Type }

// IsNull reports whether the literal is the null literal.
func (l *Literal) IsNull() bool { return l.Type == "NullLiteral" }

// Identifier is a bare name reference.
type Identifier struct {
	Name string
}

// Kind implements Node.
func (*Identifier) Kind() string { return "Identifier" }

// Other is any node that is not a call, literal or identifier. Its children
// are kept in source order so that a walk over the tree visits nodes in the
// order they appear in the script.
type Other struct {
	Type     string
	Children []Node
}

// Kind implements Node.
func (o *Other) Kind() string { return o.Type }
