package expr

import (
	"fmt"
	"strconv"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/stack"
)

// Func is a registered zero-argument function callable from the expression
// language as "name()". The grammar names the construct but leaves its
// semantics to the host, so it is wired through a caller-supplied table
// rather than a fixed builtin set.
type Func func(ctx *context.RenderContext) (Typed, error)

// Funcs maps function names to their implementation.
type Funcs map[string]Func

// Kind tags an evaluated atom for the comparison algorithm.
type Kind int8

const (
	Unknown Kind = iota
	Integer
	Real
	String
)

// Typed is a comparison-algorithm atom: a value tagged with the kind it was
// produced as. Variables evaluate to Unknown, since their stored type is
// not reflected into the expression language.
type Typed struct {
	Kind Kind
	Text string
	I    int64
	F    float64
}

func typedString(s string) Typed { return Typed{Kind: String, Text: s} }
func typedInt(i int64) Typed     { return Typed{Kind: Integer, I: i, Text: strconv.FormatInt(i, 10)} }
func typedReal(f float64) Typed  { return Typed{Kind: Real, F: f, Text: strconv.FormatFloat(f, 'g', -1, 64)} }
func typedUnknown(s string) Typed { return Typed{Kind: Unknown, Text: s} }

// Eval evaluates a parsed boolean expression against ctx, per the boolean
// mini-language's evaluation rules. A bare boolean atom is not produced
// here: the grammar only accepts unary comparisons, binary comparisons,
// and/or/not as top-level expressions.
func Eval(node Node, ctx *context.RenderContext, funcs Funcs) (bool, error) {
	return evalBool(node, ctx, funcs)
}

func wrap(err error, n Node) error {
	if err == nil {
		return nil
	}
	return stack.Annotate(err, "At token "+n.Repr())
}

func evalBool(node Node, ctx *context.RenderContext, funcs Funcs) (bool, error) {
	switch n := node.(type) {
	case Unary:
		b, err := evalUnary(n, ctx, funcs)
		return b, wrap(err, n)
	case Binary:
		b, err := evalBinary(n, ctx, funcs)
		return b, wrap(err, n)
	case And:
		left, err := evalBool(n.Left, ctx, funcs)
		if err != nil {
			return false, wrap(err, n)
		}
		if !left {
			return false, nil
		}
		right, err := evalBool(n.Right, ctx, funcs)
		return right, wrap(err, n)
	case Or:
		left, err := evalBool(n.Left, ctx, funcs)
		if err != nil {
			return false, wrap(err, n)
		}
		if left {
			return true, nil
		}
		right, err := evalBool(n.Right, ctx, funcs)
		return right, wrap(err, n)
	case Not:
		b, err := evalBool(n.Expr, ctx, funcs)
		if err != nil {
			return false, wrap(err, n)
		}
		return !b, nil
	default:
		return false, fmt.Errorf("%s is not a boolean expression", node.Repr())
	}
}

func evalUnary(n Unary, ctx *context.RenderContext, funcs Funcs) (bool, error) {
	v, ok := n.Expr.(Variable)
	if !ok {
		return false, fmt.Errorf("Expected variable")
	}
	t := ctx.GetReadOnly(v.Path)
	switch n.Op {
	case IsNull:
		return t.Empty(), nil
	case IsNotNull:
		return !t.Empty(), nil
	case IsEmpty:
		if !t.HasArray() {
			return true, nil
		}
		arr, err := t.GetArray()
		if err != nil {
			return false, err
		}
		return arr.Empty(), nil
	case IsNotEmpty:
		if !t.HasArray() {
			return false, nil
		}
		arr, err := t.GetArray()
		if err != nil {
			return false, err
		}
		return !arr.Empty(), nil
	case IsTrue:
		if !t.HasValue() {
			return false, nil
		}
		val, err := t.GetValue()
		if err != nil {
			return false, err
		}
		return val.IsTrue()
	case IsNotTrue:
		if !t.HasValue() {
			return false, nil
		}
		val, err := t.GetValue()
		if err != nil {
			return false, err
		}
		b, err := val.IsTrue()
		if err != nil {
			return false, err
		}
		return !b, nil
	default:
		return false, fmt.Errorf("unknown unary operator")
	}
}

func evalBinary(n Binary, ctx *context.RenderContext, funcs Funcs) (bool, error) {
	left, err := evalAtom(n.Left, ctx, funcs)
	if err != nil {
		return false, err
	}
	right, err := evalAtom(n.Right, ctx, funcs)
	if err != nil {
		return false, err
	}
	return compare(n.Op, left, right, n.Left, n.Right)
}

func evalAtom(node Node, ctx *context.RenderContext, funcs Funcs) (Typed, error) {
	switch n := node.(type) {
	case Literal:
		return typedString(n.Value), nil
	case IntLit:
		return typedInt(n.Value), nil
	case RealLit:
		return typedReal(n.Value), nil
	case Variable:
		t := ctx.GetReadOnly(n.Path)
		val, err := t.GetValue()
		if err != nil {
			return Typed{}, err
		}
		text, err := val.Output()
		if err != nil {
			return Typed{}, err
		}
		return typedUnknown(text), nil
	case Function:
		fn, ok := funcs[n.Path]
		if !ok {
			return Typed{}, fmt.Errorf("unknown function %q", n.Path)
		}
		return fn(ctx)
	default:
		return Typed{}, fmt.Errorf("%s is not a comparable atom", node.Repr())
	}
}

// compare implements the boolean mini-language's typed comparison algorithm.
func compare(op BinaryOp, left, right Typed, leftNode, rightNode Node) (bool, error) {
	switch {
	case left.Kind == Unknown && right.Kind != Unknown:
		l, err := castTo(right.Kind, left.Text)
		if err != nil {
			return false, fmt.Errorf("bad cast: %w", err)
		}
		return compareTyped(op, l, right)
	case right.Kind == Unknown && left.Kind != Unknown:
		r, err := castTo(left.Kind, right.Text)
		if err != nil {
			return false, fmt.Errorf("bad cast: %w", err)
		}
		return compareTyped(op, left, r)
	case left.Kind == Unknown && right.Kind == Unknown:
		return compareStrings(op, left.Text, right.Text)
	case left.Kind == right.Kind:
		return compareTyped(op, left, right)
	default:
		return false, fmt.Errorf(
			"Could not use operator %s on different types: %s(%s) and %s(%s)",
			op, kindName(left.Kind), leftNode.Repr(), kindName(right.Kind), rightNode.Repr(),
		)
	}
}

func kindName(k Kind) string {
	switch k {
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case String:
		return "String"
	default:
		return "Unknown"
	}
}

func castTo(kind Kind, text string) (Typed, error) {
	switch kind {
	case Integer:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Typed{}, err
		}
		return typedInt(i), nil
	case Real:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Typed{}, err
		}
		return typedReal(f), nil
	case String:
		return typedString(text), nil
	default:
		return typedUnknown(text), nil
	}
}

func compareTyped(op BinaryOp, left, right Typed) (bool, error) {
	switch left.Kind {
	case Integer:
		return compareOrdered(op, left.I, right.I), nil
	case Real:
		return compareOrdered(op, left.F, right.F), nil
	default:
		return compareStrings(op, left.Text, right.Text)
	}
}

func compareStrings(op BinaryOp, left, right string) (bool, error) {
	switch op {
	case Eq:
		return left == right, nil
	case Ne:
		return left != right, nil
	case Lt:
		return left < right, nil
	case Le:
		return left <= right, nil
	case Gt:
		return left > right, nil
	case Ge:
		return left >= right, nil
	default:
		return false, fmt.Errorf("unknown binary operator")
	}
}

type ordered interface {
	~int64 | ~float64
}

func compareOrdered[T ordered](op BinaryOp, left, right T) bool {
	switch op {
	case Eq:
		return left == right
	case Ne:
		return left != right
	case Lt:
		return left < right
	case Le:
		return left <= right
	case Gt:
		return left > right
	case Ge:
		return left >= right
	default:
		return false
	}
}
