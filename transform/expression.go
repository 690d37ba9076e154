package transform

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// ExprTransform evaluates one expr-lang expression per output feature.
type ExprTransform struct {
	outputs   []string
	programs  map[string]*vm.Program
	variables map[string][]string
}

func NewExprTransform(expressions map[string]string) (*ExprTransform, error) {
	t := &ExprTransform{
		programs:  make(map[string]*vm.Program, len(expressions)),
		variables: make(map[string][]string, len(expressions)),
	}
	for output, code := range expressions {
		program, err := expr.Compile(code, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("compile expression of %s: %w", output, err)
		}
		vars, err := ExtractVariables(code)
		if err != nil {
			return nil, err
		}
		t.outputs = append(t.outputs, output)
		t.programs[output] = program
		t.variables[output] = vars
	}
	sort.Strings(t.outputs)
	return t, nil
}

// Variables returns every variable referenced by any of the expressions.
func (t *ExprTransform) Variables() []string {
	set := make(map[string]struct{})
	for _, vars := range t.variables {
		for _, v := range vars {
			set[v] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for v := range set {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// Apply evaluates every expression for every row. A row whose referenced
// input is nil produces nil for that output.
func (t *ExprTransform) Apply(in Frame) (map[string][]interface{}, error) {
	out := make(map[string][]interface{}, len(t.outputs))
	for _, output := range t.outputs {
		program := t.programs[output]
		vars := t.variables[output]
		column := make([]interface{}, in.NumRows)
		env := make(map[string]interface{}, len(vars))
	rows:
		for i := 0; i < in.NumRows; i++ {
			for _, v := range vars {
				values, ok := in.Columns[v]
				if !ok {
					continue
				}
				if values[i] == nil {
					column[i] = nil
					continue rows
				}
				env[v] = values[i]
			}
			result, err := expr.Run(program, env)
			if err != nil {
				return nil, fmt.Errorf("evaluate %s at row %d: %w", output, i, err)
			}
			column[i] = result
		}
		out[output] = column
	}
	return out, nil
}

func (t *ExprTransform) Func() Func {
	return t.Apply
}

// ExtractVariables parses an expr expression and returns the sorted names of
// the variables it reads. Function names are not reported.
func ExtractVariables(code string) ([]string, error) {
	tree, err := parser.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", err)
	}

	variables := make(map[string]struct{})
	walk(tree.Node, variables)

	result := make([]string, 0, len(variables))
	for v := range variables {
		result = append(result, v)
	}
	sort.Strings(result)

	return result, nil
}

func walk(node ast.Node, variables map[string]struct{}) {
	if node == nil {
		return
	}

	switch n := node.(type) {
	case *ast.IdentifierNode:
		variables[n.Value] = struct{}{}

	case *ast.BinaryNode:
		walk(n.Left, variables)
		walk(n.Right, variables)

	case *ast.UnaryNode:
		walk(n.Node, variables)

	case *ast.MemberNode:
		// a.b carries b as a string node, a[b] as an identifier
		walk(n.Node, variables)
		walk(n.Property, variables)

	case *ast.ChainNode:
		walk(n.Node, variables)

	case *ast.SliceNode:
		walk(n.Node, variables)
		walk(n.From, variables)
		walk(n.To, variables)

	case *ast.CallNode:
		for _, arg := range n.Arguments {
			walk(arg, variables)
		}
		if _, isName := n.Callee.(*ast.IdentifierNode); !isName {
			walk(n.Callee, variables)
		}

	case *ast.BuiltinNode:
		for _, arg := range n.Arguments {
			walk(arg, variables)
		}

	case *ast.ConditionalNode:
		walk(n.Cond, variables)
		walk(n.Exp1, variables)
		walk(n.Exp2, variables)

	case *ast.ArrayNode:
		for _, elem := range n.Nodes {
			walk(elem, variables)
		}

	case *ast.MapNode:
		for _, pair := range n.Pairs {
			walk(pair, variables)
		}

	case *ast.PairNode:
		walk(n.Key, variables)
		walk(n.Value, variables)
	}
}
