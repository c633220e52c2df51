package expr_test

import (
	"strings"
	"testing"

	"github.com/midbel/webpp/context"
	"github.com/midbel/webpp/expr"
	"github.com/midbel/webpp/value"
)

func TestIsNullOnMissingVariable(t *testing.T) {
	ctx := context.NewRenderContext()
	node, err := expr.Parse("v is null")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ok, err := expr.Eval(node, ctx, nil)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	if !ok {
		t.Errorf("expected v is null to be true when v is unset")
	}
}

func TestIsNotNullWhenSet(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("v").CreateValue(value.String("x"))
	node, err := expr.Parse("v is not null")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ok, err := expr.Eval(node, ctx, nil)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	if !ok {
		t.Errorf("expected v is not null to be true when v is set")
	}
}

func TestComparisonAcrossDifferentTypesFails(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("a").CreateValue(value.Int(3))
	ctx.Get("b").CreateValue(value.String("x"))

	node, err := expr.Parse("a = b")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	_, err = expr.Eval(node, ctx, nil)
	if err == nil {
		t.Fatalf("expected evaluation to fail")
	}
	if !strings.Contains(err.Error(), "Could not use operator eq on different types") {
		t.Errorf("unexpected error text: %s", err)
	}
}

func TestComparisonLtAcrossTypesFails(t *testing.T) {
	// parse succeeds regardless of operand types; evaluation rejects an
	// int-vs-string comparison once the operand values are resolved.
	node, err := expr.Parse("a < b")
	if err != nil {
		t.Fatalf("expected parse to succeed: %s", err)
	}
	ctx := context.NewRenderContext()
	ctx.Get("a").CreateValue(value.Int(3))
	ctx.Get("b").CreateValue(value.String("x"))
	_, err = expr.Eval(node, ctx, nil)
	if err == nil || !strings.Contains(err.Error(), "Could not use operator lt on different types") {
		t.Errorf("expected lt-on-different-types error, got %v", err)
	}
}

func TestUnknownVsTypedCastsLexically(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("a").CreateValue(value.String("3"))
	node, err := expr.Parse("a = 3")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ok, err := expr.Eval(node, ctx, nil)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	if !ok {
		t.Errorf("expected a = 3 to be true after lexical cast")
	}
}

func TestBothUnknownComparedAsStrings(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("a").CreateValue(value.String("10"))
	ctx.Get("b").CreateValue(value.String("9"))
	node, err := expr.Parse("a < b")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ok, err := expr.Eval(node, ctx, nil)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	if !ok {
		t.Errorf("expected string comparison \"10\" < \"9\" to be true lexically")
	}
}

func TestAndOrShortCircuit(t *testing.T) {
	ctx := context.NewRenderContext()
	node, err := expr.Parse("v is null or v is not null")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ok, err := expr.Eval(node, ctx, nil)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	if !ok {
		t.Errorf("expected short-circuited or to be true")
	}
}

func TestNonVariableLeftOperandUnderUnaryFails(t *testing.T) {
	node, err := expr.Parse("'x' is true")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	ctx := context.NewRenderContext()
	_, err = expr.Eval(node, ctx, nil)
	if err == nil || !strings.Contains(err.Error(), "Expected variable") {
		t.Errorf("expected \"Expected variable\" error, got %v", err)
	}
}

func TestErrorFramesReportTokenPath(t *testing.T) {
	ctx := context.NewRenderContext()
	ctx.Get("testval3").CreateValue(value.Int(1))
	node, err := expr.Parse("testval3 is true")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	_, err = expr.Eval(node, ctx, nil)
	if err == nil {
		t.Fatalf("expected is_true on a non-boolean value to fail")
	}
	if !strings.Contains(err.Error(), "At token is_true(value = variable(testval3))") {
		t.Errorf("unexpected error frame: %s", err)
	}
}
