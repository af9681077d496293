// Package transform provides the value and header transform hooks
// applied during extraction, including hooks compiled from user
// expressions.
package transform

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ValueFunc transforms one extracted cell value. header is the
// resolved column name the value belongs to.
type ValueFunc func(value any, header string) any

// HeaderFunc transforms one resolved header before it keys the row.
type HeaderFunc func(header string) string

// programCache caches compiled expressions across converter runs.
var programCache sync.Map // expression string → *vm.Program

// CompileValue compiles an expression into a ValueFunc. The expression
// sees `value` and `header`; a runtime failure leaves the value
// untouched so one bad cell cannot abort a conversion.
//
//	CompileValue(`header == "email" ? lower(string(value)) : value`)
func CompileValue(expression string) (ValueFunc, error) {
	program, err := compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile value transform %q: %w", expression, err)
	}
	return func(value any, header string) any {
		out, err := expr.Run(program, map[string]any{
			"value":  value,
			"header": header,
		})
		if err != nil {
			return value
		}
		return out
	}, nil
}

// CompileHeader compiles an expression into a HeaderFunc. The
// expression sees `header` and must produce a string; anything else
// keeps the original header.
func CompileHeader(expression string) (HeaderFunc, error) {
	program, err := compile(expression)
	if err != nil {
		return nil, fmt.Errorf("compile header transform %q: %w", expression, err)
	}
	return func(h string) string {
		out, err := expr.Run(program, map[string]any{"header": h})
		if err != nil {
			return h
		}
		if s, ok := out.(string); ok {
			return s
		}
		return h
	}, nil
}

func compile(expression string) (*vm.Program, error) {
	if cached, ok := programCache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	programCache.Store(expression, program)
	return program, nil
}
