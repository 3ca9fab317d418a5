package ast_test

import (
	"testing"

	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/token"
	"github.com/stretchr/testify/assert"
)

func TestNewFiltersNilChildren(t *testing.T) {
	n := ast.New(ast.IF, token.MakePos(1, 1), "",
		ast.New(ast.VAR, token.MakePos(1, 4), "a"),
		nil,
		ast.New(ast.BLOCK, token.MakePos(1, 6), ""),
	)
	assert.Len(t, n.Children, 2)
}

func TestDump(t *testing.T) {
	root := ast.New(ast.PROGRAM, token.NoPos, "",
		ast.New(ast.PROCEDURE, token.NoPos, "main",
			ast.New(ast.RETURN, token.NoPos, "")))

	want := "PROGRAM\n.  PROCEDURE main\n.  .  RETURN\n"
	assert.Equal(t, want, ast.Dump(root))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "OPERATOR", ast.OPERATOR.String())
	assert.Equal(t, "ARGS", ast.ARGS.String())
}
