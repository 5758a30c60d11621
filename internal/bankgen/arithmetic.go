package bankgen

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ArithmeticValidator recomputes questions that embed a single binary
// arithmetic expression ("What is 345 + 278?", "3/4 + 1/8 = ?") and checks
// the marked choice against the result. Other questions pass through.
type ArithmeticValidator struct{}

func (v *ArithmeticValidator) Name() string { return "arithmetic" }

func (v *ArithmeticValidator) Validate(c *Candidate, _ Input) *ValidationError {
	want, ok := compute(c.Text)
	if !ok {
		return nil
	}
	got, ok := parseNumber(c.Correct())
	if !ok {
		// Non-numeric choices, e.g. "none of these".
		return nil
	}
	if want.Cmp(got) != 0 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("computed %s but the marked answer is %q", ratString(want), c.Correct()),
			Retryable: true,
		}
	}
	return nil
}

var (
	// Fraction arithmetic: "a/b + c/d" with +, -, *, ×, ÷.
	fractionArithRe = regexp.MustCompile(`(-?\d+)\s*/\s*(\d+)\s*([+\-*×÷])\s*(-?\d+)\s*/\s*(\d+)`)

	// Integer or decimal arithmetic with +, -, *, ×.
	numArithRe = regexp.MustCompile(`(?:^|[^\d/.])(-?\d+(?:\.\d+)?)\s*([+\-*×])\s*(-?\d+(?:\.\d+)?)(?:[^\d/.^]|$)`)

	// Division needs spaces around the slash to tell it from a fraction.
	numDivRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s+[/÷]\s+(-?\d+(?:\.\d+)?)`)
)

// compute extracts and evaluates the expression of text. It reports false
// when the text holds no recognizable expression.
func compute(text string) (*big.Rat, bool) {
	if m := fractionArithRe.FindStringSubmatch(text); m != nil {
		a, okA := new(big.Rat).SetString(m[1] + "/" + m[2])
		b, okB := new(big.Rat).SetString(m[4] + "/" + m[5])
		if !okA || !okB {
			return nil, false
		}
		return apply(a, m[3], b)
	}
	if m := numArithRe.FindStringSubmatch(text); m != nil {
		return applyStrings(m[1], m[2], m[3])
	}
	if m := numDivRe.FindStringSubmatch(text); m != nil {
		return applyStrings(m[1], "/", m[2])
	}
	return nil, false
}

func applyStrings(a, op, b string) (*big.Rat, bool) {
	x, okA := new(big.Rat).SetString(a)
	y, okB := new(big.Rat).SetString(b)
	if !okA || !okB {
		return nil, false
	}
	return apply(x, op, y)
}

func apply(a *big.Rat, op string, b *big.Rat) (*big.Rat, bool) {
	r := new(big.Rat)
	switch op {
	case "+":
		return r.Add(a, b), true
	case "-":
		return r.Sub(a, b), true
	case "*", "×":
		return r.Mul(a, b), true
	case "/", "÷":
		if b.Sign() == 0 {
			return nil, false
		}
		return r.Quo(a, b), true
	}
	return nil, false
}

// parseNumber reads an integer, decimal or fraction choice. Thousands
// separators and surrounding spaces are ignored.
func parseNumber(s string) (*big.Rat, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}
