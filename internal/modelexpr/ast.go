// Package modelexpr implements the arithmetic-expression mini-language used
// by model-library cluster definitions (spec §6, §9): identifiers resolve
// to either a parameter or a variable of the surrounding model, operators
// are `+ - * / =  <=  >=` plus unary `-`, and numbers are IEEE 754 doubles.
//
// Grounded on original_source/src/solver/modelConverter/convertorVisitor.cpp,
// the latest of its three incrementally-completed variants (spec §9): unknown
// identifiers are fatal (ErrUnknownIdentifier), not silently dropped. The AST
// is a tagged sum (Node, a Kind plus the fields each kind uses) walked by a
// single recursive Eval and built by a single recursive Parse — no visitor
// interface, no class hierarchy (spec §9 "keep the AST ... as a tagged sum").
package modelexpr

import "fmt"

// Kind tags a Node's variant.
type Kind int

const (
	KindLiteral Kind = iota
	KindParameter
	KindVariable
	KindNegation
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindEqual
	KindLessOrEqual
	KindGreaterOrEqual
)

// Node is one AST element. Only the fields relevant to Kind are populated:
// Value for KindLiteral, Name for KindParameter/KindVariable, Left for the
// unary KindNegation, Left+Right for binary arithmetic/comparison.
type Node struct {
	Kind  Kind
	Value float64
	Name  string
	Left  *Node
	Right *Node
}

// Parameter builds a reference to a named model parameter.
func Parameter(name string) *Node { return &Node{Kind: KindParameter, Name: name} }

// Variable builds a reference to a named model variable.
func Variable(name string) *Node { return &Node{Kind: KindVariable, Name: name} }

// Literal builds a constant numeric node.
func Literal(v float64) *Node { return &Node{Kind: KindLiteral, Value: v} }

// Negate builds the unary-negation of n.
func Negate(n *Node) *Node { return &Node{Kind: KindNegation, Left: n} }

func binary(k Kind, left, right *Node) *Node { return &Node{Kind: k, Left: left, Right: right} }

// Add, Sub, Mul, Div build the four arithmetic binary nodes.
func Add(l, r *Node) *Node { return binary(KindAdd, l, r) }
func Sub(l, r *Node) *Node { return binary(KindSub, l, r) }
func Mul(l, r *Node) *Node { return binary(KindMul, l, r) }
func Div(l, r *Node) *Node { return binary(KindDiv, l, r) }

// Equal, LessOrEqual, GreaterOrEqual build the three comparison nodes that
// terminate a constraint expression (`=`, `<=`, `>=`).
func Equal(l, r *Node) *Node          { return binary(KindEqual, l, r) }
func LessOrEqual(l, r *Node) *Node    { return binary(KindLessOrEqual, l, r) }
func GreaterOrEqual(l, r *Node) *Node { return binary(KindGreaterOrEqual, l, r) }

// String renders n back to its textual form, mainly for error messages and
// snapshot dumps; it is not required to round-trip through Parse byte-exact.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindLiteral:
		return fmt.Sprintf("%g", n.Value)
	case KindParameter, KindVariable:
		return n.Name
	case KindNegation:
		return "-(" + n.Left.String() + ")"
	case KindAdd:
		return "(" + n.Left.String() + " + " + n.Right.String() + ")"
	case KindSub:
		return "(" + n.Left.String() + " - " + n.Right.String() + ")"
	case KindMul:
		return "(" + n.Left.String() + " * " + n.Right.String() + ")"
	case KindDiv:
		return "(" + n.Left.String() + " / " + n.Right.String() + ")"
	case KindEqual:
		return n.Left.String() + " = " + n.Right.String()
	case KindLessOrEqual:
		return n.Left.String() + " <= " + n.Right.String()
	case KindGreaterOrEqual:
		return n.Left.String() + " >= " + n.Right.String()
	default:
		return "<unknown>"
	}
}
