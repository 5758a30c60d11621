// Package calculator is the scratch calculator shown as a floating panel
// during a session. It evaluates left to right with no operator precedence:
// 2 + 3 × 4 = 20.
package calculator

import (
	"math"
	"strconv"
	"strings"
)

// MaxDisplayLen caps the number of characters an operand can grow to.
const MaxDisplayLen = 16

// Operator is a binary arithmetic operator.
type Operator rune

const (
	None     Operator = 0
	Add      Operator = '+'
	Subtract Operator = '−'
	Multiply Operator = '×'
	Divide   Operator = '÷'
)

// ParseOperator maps keyboard input to an Operator. It accepts both the
// display glyphs and their ASCII spellings.
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "+":
		return Add, true
	case "-", "−":
		return Subtract, true
	case "*", "x", "×":
		return Multiply, true
	case "/", "÷":
		return Divide, true
	}
	return None, false
}

func (o Operator) String() string {
	if o == None {
		return ""
	}
	return string(o)
}

// State is the calculator's coarse state.
type State int

const (
	EnteringOperand State = iota
	OperatorPending
)

func (s State) String() string {
	if s == OperatorPending {
		return "operator-pending"
	}
	return "entering-operand"
}

// Calculator holds the four fields of calculator state. The zero value is
// not ready; use New.
type Calculator struct {
	display     string
	previous    float64
	hasPrevious bool
	pending     Operator
	awaiting    bool
}

// New returns a cleared calculator.
func New() *Calculator {
	c := &Calculator{}
	c.Clear()
	return c
}

// Display returns the text currently shown.
func (c *Calculator) Display() string { return c.display }

// PendingOperator returns the operator waiting for its right operand.
func (c *Calculator) PendingOperator() Operator { return c.pending }

// Previous returns the stored left operand, if any.
func (c *Calculator) Previous() (float64, bool) { return c.previous, c.hasPrevious }

// AwaitingOperand reports whether the next digit starts a new operand.
func (c *Calculator) AwaitingOperand() bool { return c.awaiting }

// State reports whether an operator is pending.
func (c *Calculator) State() State {
	if c.pending != None {
		return OperatorPending
	}
	return EnteringOperand
}

// InputDigit enters one digit. Non-digit runes are ignored.
func (c *Calculator) InputDigit(d rune) {
	if d < '0' || d > '9' {
		return
	}
	if c.awaiting {
		c.display = string(d)
		c.awaiting = false
		return
	}
	if c.display == "0" {
		c.display = string(d)
		return
	}
	if len(c.display) >= MaxDisplayLen {
		return
	}
	c.display += string(d)
}

// InputDecimal appends a decimal point unless the operand already has one.
func (c *Calculator) InputDecimal() {
	if c.awaiting {
		c.display = "0."
		c.awaiting = false
		return
	}
	if strings.Contains(c.display, ".") || len(c.display) >= MaxDisplayLen {
		return
	}
	c.display += "."
}

// InputOperator folds any pending operation and stores op as the next
// operator.
func (c *Calculator) InputOperator(op Operator) {
	if op == None {
		return
	}
	switch {
	case c.pending != None && !c.awaiting:
		c.fold()
	case c.pending == None:
		c.previous = c.value()
		c.hasPrevious = true
	}
	// An operator pressed right after another one replaces it.
	c.pending = op
	c.awaiting = true
}

// InputEquals applies the pending operator, if any.
func (c *Calculator) InputEquals() {
	if c.pending == None {
		return
	}
	c.fold()
	c.pending = None
	c.hasPrevious = false
	c.previous = 0
	c.awaiting = true
}

// Clear resets the calculator.
func (c *Calculator) Clear() {
	c.display = "0"
	c.previous = 0
	c.hasPrevious = false
	c.pending = None
	c.awaiting = false
}

// Backspace removes the last display character.
func (c *Calculator) Backspace() {
	if c.display != "" {
		c.display = c.display[:len(c.display)-1]
	}
	if c.display == "" || c.display == "-" {
		c.display = "0"
	}
}

func (c *Calculator) fold() {
	result := Apply(c.pending, c.previous, c.value())
	c.previous = result
	c.hasPrevious = true
	c.display = Format(result)
}

func (c *Calculator) value() float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(c.display, "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// Apply evaluates a op b. Division by zero, and any result that is not a
// finite number, yields 0.
func Apply(op Operator, a, b float64) float64 {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		if b == 0 {
			return 0
		}
		r = a / b
	default:
		return b
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Format renders v without trailing zeros, rounded to 12 significant
// digits so binary float noise does not reach the display.
func Format(v float64) string {
	if v == 0 {
		return "0"
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
