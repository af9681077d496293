package models

import "time"

// CellType classifies the decoded value of a single cell.
type CellType int

const (
	// TypeString is plain text.
	TypeString CellType = iota
	// TypeNumber is a numeric cell.
	TypeNumber
	// TypeBoolean is a boolean cell.
	TypeBoolean
	// TypeDate is a cell whose number format renders a date.
	TypeDate
	// TypeFormula is a cell computed from a formula; Value holds the
	// decoder-computed result, never the formula text.
	TypeFormula
	// TypeError is an error cell (#REF!, #DIV/0!, ...).
	TypeError
)

// Cell is one decoded cell. Value holds a string, float64, bool or
// time.Time depending on Type. The zero Cell is an empty cell.
type Cell struct {
	Value   any
	Type    CellType
	Formula string
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	if c.Value == nil {
		return true
	}
	if s, ok := c.Value.(string); ok {
		return s == ""
	}
	return false
}

// Time returns the cell value as a time.Time when it holds one.
func (c Cell) Time() (time.Time, bool) {
	t, ok := c.Value.(time.Time)
	return t, ok
}
