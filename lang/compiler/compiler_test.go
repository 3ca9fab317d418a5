package compiler_test

import (
	"testing"

	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/compiler"
	"github.com/pellmell/wbc/lang/opcode"
	"github.com/pellmell/wbc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) []uint16 {
	t.Helper()
	code, err := compiler.New(compiler.V2_0_0).Compile(src)
	require.NoError(t, err)
	return code
}

func TestAssignArithmeticAndCall(t *testing.T) {
	code := compile(t, "main { a = 1 + 2; fire(a); return; }")
	want := []uint16{
		0, 3, uint16(opcode.JMP), // bootstrap trampoline, main resolved to addr 3
		uint16(opcode.A), 1, 2, uint16(opcode.ADD), uint16(opcode.ASS),
		uint16(opcode.FIRE), uint16(opcode.A), uint16(opcode.ASS),
		uint16(opcode.JMP), // explicit return
		uint16(opcode.JMP), // implicit trailing return
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestInitProcedureFallsThroughToMain(t *testing.T) {
	code := compile(t, "init { a = 0; } main { fire(a); return; }")
	want := []uint16{
		3, 6, uint16(opcode.JMP), // trampoline 1: call init, return to trampoline 2
		3, 9, uint16(opcode.JMP), // trampoline 2: call main, return to trampoline 2 (loop)
		uint16(opcode.A), 0, uint16(opcode.ASS), // init body, no trailing JMP
		uint16(opcode.FIRE), uint16(opcode.A), uint16(opcode.ASS),
		uint16(opcode.JMP), // explicit return
		uint16(opcode.JMP), // implicit trailing return
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestZeroArgSensorCall(t *testing.T) {
	code := compile(t, "main { a = xpos; return; }")
	want := []uint16{
		0, 3, uint16(opcode.JMP),
		uint16(opcode.A), uint16(opcode.XPOS), uint16(opcode.ASS),
		uint16(opcode.JMP),
		uint16(opcode.JMP),
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestZeroArgSensorCallWithEmptyParens(t *testing.T) {
	code := compile(t, "main { a = xpos(); return; }")
	want := []uint16{
		0, 3, uint16(opcode.JMP),
		uint16(opcode.A), uint16(opcode.XPOS), uint16(opcode.ASS),
		uint16(opcode.JMP),
		uint16(opcode.JMP),
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestUnaryConstantFolding(t *testing.T) {
	code := compile(t, "main { a = -5; b = !0; return; }")
	want := []uint16{
		0, 3, uint16(opcode.JMP),
		uint16(opcode.A), uint16(int16(-5)), uint16(opcode.ASS),
		uint16(opcode.B), 1, uint16(opcode.ASS),
		uint16(opcode.JMP),
		uint16(opcode.JMP),
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestUnaryOnNonLiteralEmitsOpcode(t *testing.T) {
	code := compile(t, "main { a = -a; return; }")
	// the operand is a VAR, not an INTEGER, so no constant folding applies:
	// the NEG opcode itself must be emitted.
	assert.Contains(t, code, uint16(opcode.NEG))
}

func TestIfElseIfElseChain(t *testing.T) {
	code := compile(t, "main { if (a > 1) { b = 1; } else if (a < 1) { b = 2; } else { b = 3; } return; }")
	// every branch must converge on the same address (the RETURN's JMP), and
	// no branch's code should be skipped entirely.
	require.NotEmpty(t, code)
	assert.Contains(t, code, uint16(opcode.JIZ))
	assert.Contains(t, code, uint16(opcode.GT))
	assert.Contains(t, code, uint16(opcode.LT))

	want := []uint16{
		0, 3, uint16(opcode.JMP),
		uint16(opcode.A), 1, uint16(opcode.GT), 13, uint16(opcode.JIZ),
		uint16(opcode.B), 1, uint16(opcode.ASS),
		26, uint16(opcode.JMP), // then-arm exit
		uint16(opcode.A), 1, uint16(opcode.LT), 23, uint16(opcode.JIZ),
		uint16(opcode.B), 2, uint16(opcode.ASS),
		26, uint16(opcode.JMP), // else-if-arm exit
		uint16(opcode.B), 3, uint16(opcode.ASS),
		uint16(opcode.JMP), // explicit return, address 26
		uint16(opcode.JMP),
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestWhileBodyRunsAtMostOnce(t *testing.T) {
	code := compile(t, "main { while (a > 0) { a = a - 1; } return; }")
	// DESIGN.md Open Question 1: no backward jump is ever emitted by the
	// compiler. The loop compiles to its condition, a single forward JIZ past
	// the body, and the body; the only JMPs are main's explicit and implicit
	// returns, so nothing jumps back to re-test the condition.
	jizCount := 0
	for _, w := range code {
		if opcode.Opcode(w) == opcode.JIZ {
			jizCount++
		}
	}
	assert.Equal(t, 1, jizCount)

	want := []uint16{
		0, 3, uint16(opcode.JMP),
		uint16(opcode.A), 0, uint16(opcode.GT), 13, uint16(opcode.JIZ),
		uint16(opcode.A), uint16(opcode.A), 1, uint16(opcode.SUB), uint16(opcode.ASS),
		uint16(opcode.JMP), // explicit return, address 13
		uint16(opcode.JMP),
		uint16(opcode.EOC),
	}
	assert.Equal(t, want, code)
}

func TestMissingMainIsAnError(t *testing.T) {
	_, err := compiler.New(compiler.V2_0_0).Compile("init { return; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main")
}

func TestDuplicateProcedureIsAnError(t *testing.T) {
	_, err := compiler.New(compiler.V2_0_0).Compile("main { return; } main { return; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defined more than once")
}

func TestArgCountMismatchIsAnError(t *testing.T) {
	_, err := compiler.New(compiler.V2_0_0).Compile("main { fire(1, 2); return; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 parameters")
}

func TestUndefinedProcedureCallIsAnError(t *testing.T) {
	_, err := compiler.New(compiler.V2_0_0).Compile("main { helper; return; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined procedure")
}

func TestUnknownOperatorIsAnError(t *testing.T) {
	// Hand-build an AST with a lexeme the parser could never produce, to
	// exercise the generator's own defense of its operator table.
	root := ast.New(ast.PROGRAM, token.NoPos, "",
		ast.New(ast.PROCEDURE, token.NoPos, "main",
			ast.New(ast.OPERATOR, token.NoPos, "@",
				ast.New(ast.INTEGER, token.NoPos, "1"),
				ast.New(ast.INTEGER, token.NoPos, "2"))))

	_, err := compiler.NewGenerator(compiler.V2_0_0).Generate(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operator")
}
