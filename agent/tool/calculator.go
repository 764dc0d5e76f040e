package tool

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// Accepts digits, whitespace, decimal points, operators, and parentheses.
var strictExpressionPattern = regexp.MustCompile(`^[\d\s\+\-\*/%\^\(\)\.]+$`)

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Calculator evaluates arithmetic. Clean expressions go through a
// recursive-descent parser; natural-language requests ("what is 15
// times 8") fall back to number extraction plus operation keywords.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) Name() string { return NameCalculator }

func (c *Calculator) Invoke(_ context.Context, input map[string]any) (contract.ToolOutput, error) {
	raw, ok := input["expression"]
	if !ok {
		return contract.ToolOutput{Success: false, Err: "expression is required"}, nil
	}
	expression, ok := raw.(string)
	if !ok {
		return contract.ToolOutput{Success: false, Err: "expression must be a string"}, nil
	}
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return contract.ToolOutput{Success: false, Err: "expression is empty"}, nil
	}

	if strictExpressionPattern.MatchString(expression) {
		return c.evaluateStrict(expression)
	}
	return c.evaluateLoose(expression)
}

func (c *Calculator) evaluateStrict(expression string) (contract.ToolOutput, error) {
	if err := checkParentheses(expression); err != nil {
		return contract.ToolOutput{Success: false, Err: err.Error()}, nil
	}
	result, err := evaluateExpression(expression)
	if err != nil {
		return contract.ToolOutput{Success: false, Err: err.Error()}, nil
	}
	return contract.ToolOutput{
		Success: true,
		Text:    fmt.Sprintf("The result of %s is %s.", expression, formatNumber(result)),
		Data: map[string]any{
			"calculation": map[string]any{"expression": expression, "result": result},
		},
	}, nil
}

// evaluateLoose handles utterances that mix words with numbers. It
// needs two numbers and one operation keyword or symbol.
func (c *Calculator) evaluateLoose(expression string) (contract.ToolOutput, error) {
	numbers := numberPattern.FindAllString(expression, -1)
	if len(numbers) < 2 {
		return contract.ToolOutput{
			Success: false,
			Text:    "I need at least two numbers to perform a calculation.",
			Err:     "insufficient numbers in expression",
		}, nil
	}

	a, err := strconv.ParseFloat(numbers[0], 64)
	if err != nil {
		return contract.ToolOutput{Success: false, Err: fmt.Sprintf("invalid number %q", numbers[0])}, nil
	}
	b, err := strconv.ParseFloat(numbers[1], 64)
	if err != nil {
		return contract.ToolOutput{Success: false, Err: fmt.Sprintf("invalid number %q", numbers[1])}, nil
	}

	lower := strings.ToLower(expression)
	var result float64
	var symbol string
	switch {
	case strings.Contains(expression, "+") || strings.Contains(lower, "add") || strings.Contains(lower, "plus"):
		result, symbol = a+b, "+"
	case strings.Contains(expression, "-") || strings.Contains(lower, "subtract") || strings.Contains(lower, "minus"):
		result, symbol = a-b, "-"
	case strings.Contains(expression, "*") || strings.Contains(lower, "multiply") || strings.Contains(lower, "times"):
		result, symbol = a*b, "×"
	case strings.Contains(expression, "/") || strings.Contains(lower, "divide"):
		if b == 0 {
			return contract.ToolOutput{
				Success: false,
				Text:    "I can't divide by zero!",
				Err:     "division by zero",
			}, nil
		}
		result, symbol = a/b, "÷"
	default:
		return contract.ToolOutput{
			Success: false,
			Text:    "I couldn't determine the mathematical operation. Please specify add, subtract, multiply, or divide.",
			Err:     "unknown operation",
		}, nil
	}

	return contract.ToolOutput{
		Success: true,
		Text:    fmt.Sprintf("The result of %s %s %s is %s.", formatNumber(a), symbol, formatNumber(b), formatNumber(result)),
		Data: map[string]any{
			"calculation": map[string]any{"a": a, "b": b, "result": result, "operation": expression},
		},
	}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func checkParentheses(expression string) error {
	balance := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			balance++
		case ')':
			balance--
			if balance < 0 {
				return fmt.Errorf("expression has unbalanced parentheses")
			}
		}
	}
	if balance != 0 {
		return fmt.Errorf("expression has unbalanced parentheses")
	}
	return nil
}

func evaluateExpression(expression string) (float64, error) {
	p := &exprParser{input: expression}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.hasNext() {
		return 0, fmt.Errorf("unexpected token at position %d", p.pos)
	}
	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('+'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.match('-'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		switch {
		case p.match('*'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.match('/'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.match('%'):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if p.match('^') {
		right, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(left, right), nil
	}
	return left, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.match('+') {
		return p.parseUnary()
	}
	if p.match('-') {
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.match('(') {
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(')') {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return value, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	hasDigit := false
	hasDot := false

	for p.hasNext() {
		ch := p.peek()
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
			p.pos++
		case ch == '.':
			if hasDot {
				return 0, fmt.Errorf("invalid number format at position %d", p.pos)
			}
			hasDot = true
			p.pos++
		default:
			goto done
		}
	}

done:
	if !hasDigit {
		return 0, fmt.Errorf("expected number at position %d", start)
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.hasNext() && p.peek() == ' ' {
		p.pos++
	}
}

func (p *exprParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *exprParser) peek() byte {
	return p.input[p.pos]
}

func (p *exprParser) match(expected byte) bool {
	if p.hasNext() && p.peek() == expected {
		p.pos++
		return true
	}
	return false
}
