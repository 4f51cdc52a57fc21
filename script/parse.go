// Package script parses inline page scripts into a small expression tree.
// Parsing is purely syntactic; nothing is evaluated.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/parser"
)

// ErrParse matches every *ParseError via errors.Is.
var ErrParse = errors.New("script parse error")

// ParseError reports script source that is not valid for the grammar.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse script: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parse converts script source into an expression tree rooted at a node of
// kind "Program".
func Parse(src string) (root Node, err error) {
	program, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// ast.Walk panics on node types it does not know about
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = &ParseError{Err: fmt.Errorf("unsupported syntax: %v", r)}
		}
	}()

	b := &builder{}
	ast.Walk(b, program)
	if b.root == nil {
		return &Other{Type: "Program"}, nil
	}
	return b.root, nil
}

// builder turns otto's AST into Nodes. Enter pushes a frame, Exit pops it,
// converts it, and attaches the result to the parent frame, so children end
// up in the order ast.Walk visits them.
type builder struct {
	stack []*frame
	root  Node
}

type frame struct {
	node     ast.Node
	children []Node
}

func (b *builder) Enter(n ast.Node) ast.Visitor {
	b.stack = append(b.stack, &frame{node: n})
	return b
}

func (b *builder) Exit(n ast.Node) {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	converted := convert(top.node, top.children)
	if len(b.stack) == 0 {
		b.root = converted
		return
	}
	parent := b.stack[len(b.stack)-1]
	parent.children = append(parent.children, converted)
}

func convert(n ast.Node, children []Node) Node {
	switch n := n.(type) {
	case *ast.CallExpression:
		// ast.Walk visits the callee first, then each argument
		if n != nil && len(children) > 0 {
			return &Call{Callee: children[0], Args: children[1:]}
		}
	case *ast.Identifier:
		if n != nil {
			return &Identifier{Name: string(n.Name)}
		}
	case *ast.StringLiteral:
		if n != nil {
			return &Literal{Type: "StringLiteral", Value: string(n.Value)}
		}
	case *ast.NumberLiteral:
		if n != nil {
			return &Literal{Type: "NumberLiteral", Value: n.Literal}
		}
	case *ast.BooleanLiteral:
		if n != nil {
			return &Literal{Type: "BooleanLiteral", Value: n.Literal}
		}
	case *ast.NullLiteral:
		if n != nil {
			return &Literal{Type: "NullLiteral"}
		}
	case *ast.RegExpLiteral:
		if n != nil {
			return &Literal{Type: "RegExpLiteral", Value: n.Literal}
		}
	}

	return &Other{Type: kindOf(n), Children: children}
}

// kindOf names a node after its AST type, e.g. "ExpressionStatement".
func kindOf(n ast.Node) string {
	name := fmt.Sprintf("%T", n)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
