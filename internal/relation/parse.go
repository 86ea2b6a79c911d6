package relation

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	test_driver "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// parseRule turns a rule's boolean expression text into an evaluable expr
// tree. The text is a subset of a SQL WHERE clause, so it is parsed by
// wrapping it in a synthetic SELECT and walking the resulting ast.ExprNode
// rather than writing a bespoke grammar.
func parseRule(text string) (expr, error) {
	p := parser.New()
	stmtNodes, _, err := p.Parse(fmt.Sprintf("SELECT 1 WHERE %s", text), "", "")
	if err != nil {
		return nil, fmt.Errorf("relation rule %q: %w", text, err)
	}
	if len(stmtNodes) != 1 {
		return nil, fmt.Errorf("relation rule %q: expected exactly one statement", text)
	}
	sel, ok := stmtNodes[0].(*ast.SelectStmt)
	if !ok || sel.Where == nil {
		return nil, fmt.Errorf("relation rule %q: expected a WHERE expression", text)
	}
	return convertExpr(sel.Where)
}

func convertExpr(node ast.ExprNode) (expr, error) {
	switch n := node.(type) {
	case *ast.BinaryOperationExpr:
		return convertBinary(n)
	case *ast.UnaryOperationExpr:
		return convertUnary(n)
	case *ast.PatternInExpr:
		return convertIn(n)
	case *ast.ParenthesesExpr:
		return convertExpr(n.Expr)
	default:
		return nil, fmt.Errorf("unsupported expression node %T", node)
	}
}

func convertBinary(n *ast.BinaryOperationExpr) (expr, error) {
	switch n.Op {
	case opcode.LogicAnd:
		left, err := convertExpr(n.L)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(n.R)
		if err != nil {
			return nil, err
		}
		return andExpr{left: left, right: right}, nil
	case opcode.LogicOr:
		left, err := convertExpr(n.L)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(n.R)
		if err != nil {
			return nil, err
		}
		return orExpr{left: left, right: right}, nil
	case opcode.EQ, opcode.NE, opcode.LT, opcode.LE, opcode.GT, opcode.GE:
		left, err := convertOperand(n.L)
		if err != nil {
			return nil, err
		}
		right, err := convertOperand(n.R)
		if err != nil {
			return nil, err
		}
		return comparisonExpr{left: left, right: right, op: convertCompareOp(n.Op)}, nil
	default:
		return nil, fmt.Errorf("unsupported binary operator %v", n.Op)
	}
}

func convertCompareOp(op opcode.Op) compareOp {
	switch op {
	case opcode.EQ:
		return opEQ
	case opcode.NE:
		return opNE
	case opcode.LT:
		return opLT
	case opcode.LE:
		return opLE
	case opcode.GT:
		return opGT
	case opcode.GE:
		return opGE
	default:
		return opEQ
	}
}

func convertUnary(n *ast.UnaryOperationExpr) (expr, error) {
	if n.Op != opcode.Not {
		return nil, fmt.Errorf("unsupported unary operator %v", n.Op)
	}
	child, err := convertExpr(n.V)
	if err != nil {
		return nil, err
	}
	return notExpr{child: child}, nil
}

func convertIn(n *ast.PatternInExpr) (expr, error) {
	left, err := convertOperand(n.Expr)
	if err != nil {
		return nil, err
	}
	options := make([]operand, 0, len(n.List))
	for _, item := range n.List {
		opt, err := convertOperand(item)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	e := expr(inExpr{left: left, options: options})
	if n.Not {
		e = notExpr{child: e}
	}
	return e, nil
}

func convertOperand(node ast.ExprNode) (operand, error) {
	switch n := node.(type) {
	case *ast.ColumnNameExpr:
		return operand{isProperty: true, property: strings.ToUpper(n.Name.Name.O)}, nil
	case *test_driver.ValueExpr:
		return operand{literal: datumToString(n)}, nil
	default:
		return operand{}, fmt.Errorf("unsupported operand %T", node)
	}
}

func datumToString(v *test_driver.ValueExpr) string {
	d := v.Datum
	s, err := d.ToString()
	if err != nil {
		return ""
	}
	return s
}
