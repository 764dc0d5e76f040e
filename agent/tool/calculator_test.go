package tool

import (
	"context"
	"strings"
	"testing"
)

func TestCalculatorStrictExpression(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": "2 + 3 * (4 - 1)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if !strings.Contains(out.Text, "11") {
		t.Fatalf("unexpected text: %s", out.Text)
	}
}

func TestCalculatorNaturalLanguage(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": "Calculate 15 * 8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if !strings.Contains(out.Text, "120") {
		t.Fatalf("result missing from text: %s", out.Text)
	}
}

func TestCalculatorKeywordOperations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expression string
		want       string
	}{
		{"what is 10 plus 5", "15"},
		{"subtract 3 from 10", "-7"},
		{"9 times 3 please", "27"},
		{"divide 10 by 4", "2.5"},
	}

	for _, tc := range cases {
		out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": tc.expression})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.expression, err)
		}
		if !out.Success {
			t.Fatalf("%q: expected success: %+v", tc.expression, out)
		}
		if !strings.Contains(out.Text, tc.want) {
			t.Fatalf("%q: expected %s in %s", tc.expression, tc.want, out.Text)
		}
	}
}

func TestCalculatorDivisionByZero(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": "divide 5 by 0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
	if out.Text != "I can't divide by zero!" {
		t.Fatalf("unexpected text: %s", out.Text)
	}

	out, err = NewCalculator().Invoke(context.Background(), map[string]any{"expression": "5 / 0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("strict division by zero should fail: %+v", out)
	}
}

func TestCalculatorInsufficientNumbers(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": "calculate something"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
	if out.Err != "insufficient numbers in expression" {
		t.Fatalf("unexpected error field: %s", out.Err)
	}
}

func TestCalculatorMissingExpression(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success || out.Err != "expression is required" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCalculatorUnbalancedParentheses(t *testing.T) {
	t.Parallel()

	out, err := NewCalculator().Invoke(context.Background(), map[string]any{"expression": "(2 + 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
}
