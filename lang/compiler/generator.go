package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/opcode"
)

// operatorMap translates a parsed operator lexeme to its opcode, grounded on
// the original implementation's CodeGenerator.OPERATOR_MAP.
var operatorMap = map[string]opcode.Opcode{
	"!": opcode.NOT, "~": opcode.NEG, "=": opcode.ASS,
	"+": opcode.ADD, "-": opcode.SUB, "*": opcode.MUL, "/": opcode.DIV, "%": opcode.MOD,
	"==": opcode.EQ, "!=": opcode.NEQ, ">": opcode.GT, "<": opcode.LT,
	">=": opcode.GTE, "<=": opcode.LTE,
	"&": opcode.AND, "|": opcode.OR, "^": opcode.XOR,
}

// pendingCall records a forward reference to a procedure by name: the
// position in code that must be patched, once every procedure has been
// emitted, with that procedure's entry address.
type pendingCall struct {
	pos  int
	name string
}

// Generator lowers a parsed program into fixed-width 16-bit bytecode words
// in a single pass, back-patching jump targets and procedure calls as their
// addresses become known (spec.md §4.4).
type Generator struct {
	version Version

	code   []uint16
	symtab *swiss.Map[string, int]
	calls  []pendingCall
}

// NewGenerator returns a Generator targeting the given bytecode version.
func NewGenerator(version Version) *Generator {
	return &Generator{version: version}
}

func (g *Generator) address() int { return len(g.code) }

func (g *Generator) emit(w uint16) { g.code = append(g.code, w) }

// Generate lowers root — the PROGRAM node returned by lang/parser.Parse —
// into a complete word stream, resolving every call and jump target, and
// appending the end-of-code marker.
func (g *Generator) Generate(root *ast.Node) (code []uint16, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = ce
			// the partial word stream remains observable after a failure
			// (spec.md §3, "Lifecycle"), e.g. for a CLI listing alongside the
			// error message.
			code = g.code
		}
	}()

	g.code = nil
	g.symtab = swiss.NewMap[string, int](8)
	g.calls = nil

	var mainNode, initNode *ast.Node
	var others []*ast.Node
	for _, proc := range root.Children {
		switch strings.ToLower(proc.Lexeme) {
		case "main":
			if mainNode != nil {
				panic(&Error{Pos: proc.Pos, Msg: fmt.Sprintf("procedure %s defined more than once", proc.Lexeme)})
			}
			mainNode = proc
		case "init":
			if initNode != nil {
				panic(&Error{Pos: proc.Pos, Msg: fmt.Sprintf("procedure %s defined more than once", proc.Lexeme)})
			}
			initNode = proc
		default:
			others = append(others, proc)
		}
	}
	if mainNode == nil {
		panic(&Error{Msg: "unable to find 'main' procedure"})
	}

	// Bootstrap trampoline: [return_addr, CALL_main target, JMP]. Execution
	// begins here; falling back to address 0 (via the trailing JMP that ends
	// every procedure) re-enters this trampoline and re-invokes main forever.
	g.emit(0)
	g.calls = append(g.calls, pendingCall{pos: g.address(), name: "main"})
	g.emit(0)
	g.emit(uint16(opcode.JMP))

	if initNode != nil {
		// With an init procedure, the return address baked into the first
		// trampoline must point past a *second* 3-word trampoline (this one
		// calling init) rather than back to address 0, or init would run on
		// every tick instead of once.
		g.code[0] = 3
		prologue := []uint16{3, 0, uint16(opcode.JMP)}
		g.code = append(prologue, g.code...)
		for i := range g.calls {
			g.calls[i].pos += 3
		}
		g.calls = append([]pendingCall{{pos: 1, name: "init"}}, g.calls...)

		// init falls straight through into main's generated code below: no
		// JMP is emitted at the end of init, so the second trampoline (the
		// one that calls main) is only ever reached via main's own return.
		g.procedure(initNode, false)
	}

	g.procedure(mainNode, true)
	for _, proc := range others {
		g.procedure(proc, true)
	}

	for _, c := range g.calls {
		addr, ok := g.symtab.Get(c.name)
		if !ok {
			panic(&Error{Msg: fmt.Sprintf("call to undefined procedure %q", c.name)})
		}
		g.code[c.pos] = uint16(addr)
	}

	g.emit(uint16(opcode.EOC))
	return g.code, nil
}

func (g *Generator) procedure(node *ast.Node, returnJump bool) {
	addr := g.address()
	for _, stmt := range node.Children {
		g.statement(stmt)
	}
	if returnJump {
		g.emit(uint16(opcode.JMP))
	}
	name := strings.ToLower(node.Lexeme)
	if _, exists := g.symtab.Get(name); exists {
		panic(&Error{Pos: node.Pos, Msg: fmt.Sprintf("procedure %s defined more than once", node.Lexeme)})
	}
	g.symtab.Put(name, addr)
}

func (g *Generator) statement(n *ast.Node) {
	switch n.Kind {
	case ast.CALL:
		g.handleCall(n)
	case ast.IF:
		g.handleIf(n)
	case ast.OPERATOR:
		g.handleOperator(n)
	case ast.RETURN:
		g.emit(uint16(opcode.JMP))
	case ast.WHILE:
		g.handleWhile(n)
	}
}

func (g *Generator) expression(n *ast.Node) {
	switch n.Kind {
	case ast.CALL:
		g.handleCall(n)
	case ast.INTEGER:
		v, _ := strconv.Atoi(n.Lexeme)
		g.emit(uint16(v))
	case ast.OPERATOR:
		g.handleOperator(n)
	case ast.VAR:
		g.emit(uint16(opcode.Var(n.Lexeme[0])))
	}
}

func (g *Generator) handleCall(n *ast.Node) {
	lowered := strings.ToLower(n.Lexeme)
	actual := len(n.Children)

	if op, known := opcode.ByName[lowered]; known {
		expected := opcode.Nargs(op)
		if expected != actual && !(opcode.IsSpecial(op) && actual == 0) {
			panic(&Error{Pos: n.Pos, Msg: fmt.Sprintf(
				"expected %d parameters for %s, instead got %d", expected, n.Lexeme, actual)})
		}
		if opcode.IsProcedure(op) {
			g.emit(uint16(op))
			if actual == 1 {
				g.expression(n.Children[0])
				g.emit(uint16(opcode.ASS))
			}
			return
		}
		for _, c := range n.Children {
			g.expression(c)
		}
		g.emit(uint16(op))
		return
	}

	// Not a built-in: a call to a user-defined procedure, resolved once every
	// procedure has been emitted (spec.md §4.4.4, "CALL_<name> linking").
	g.emit(uint16(g.address() + 3))
	g.calls = append(g.calls, pendingCall{pos: g.address(), name: lowered})
	g.emit(0)
	g.emit(uint16(opcode.JMP))
}

func (g *Generator) handleIf(root *ast.Node) {
	cond := root.Children[0]
	body := root.Children[1]
	elses := root.Children[2:]

	g.expression(cond)
	elseAddrPos := g.address()
	endAddrPositions := []int{elseAddrPos}
	g.emit(0)
	g.emit(uint16(opcode.JIZ))
	for _, stmt := range body.Children {
		g.statement(stmt)
	}

	for _, n := range elses {
		g.code[elseAddrPos] = uint16(g.address() + 2)
		endAddrPositions = removeInt(endAddrPositions, elseAddrPos)
		endAddrPositions = append(endAddrPositions, g.address())
		g.emit(0)
		g.emit(uint16(opcode.JMP))

		if n.Kind == ast.IF {
			elseAddrPos = g.elseIf(n)
			endAddrPositions = append(endAddrPositions, elseAddrPos)
			continue
		}
		for _, stmt := range n.Children {
			g.statement(stmt)
		}
		break
	}

	for _, pos := range endAddrPositions {
		g.code[pos] = uint16(g.address())
	}
}

// elseIf emits one else-if branch's condition and body, returning the
// position of its JIZ placeholder so the caller can either patch it to the
// next branch or add it to the set of positions to patch to the end.
func (g *Generator) elseIf(root *ast.Node) int {
	cond := root.Children[0]
	body := root.Children[1]
	g.expression(cond)
	pos := g.address()
	g.emit(0)
	g.emit(uint16(opcode.JIZ))
	for _, stmt := range body.Children {
		g.statement(stmt)
	}
	return pos
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func (g *Generator) handleOperator(n *ast.Node) {
	op, ok := operatorMap[n.Lexeme]
	if !ok {
		panic(&Error{Pos: n.Pos, Msg: fmt.Sprintf("unknown operator %s", n.Lexeme)})
	}

	start := g.address()
	g.expression(n.Children[0])

	unary := n.Lexeme == "~" || n.Lexeme == "!"
	if !unary {
		g.expression(n.Children[1])
	} else if g.address()-start == 1 && n.Children[0].Kind == ast.INTEGER {
		last := int16(g.code[len(g.code)-1])
		if n.Lexeme == "~" {
			g.code[len(g.code)-1] = uint16(-last)
		} else if last == 0 {
			g.code[len(g.code)-1] = 1
		} else {
			g.code[len(g.code)-1] = 0
		}
		return
	}
	g.emit(uint16(op))
}

// handleWhile emits the loop condition, a placeholder JIZ, and the body, but
// no backward jump to re-test the condition: the body runs at most once.
// This reproduces spec.md §4.4.2's documented (and deliberately unfixed)
// behavior — see DESIGN.md, Open Question 1.
func (g *Generator) handleWhile(n *ast.Node) {
	cond := n.Children[0]
	body := n.Children[1]

	g.expression(cond)
	endPos := g.address()
	g.emit(0)
	g.emit(uint16(opcode.JIZ))
	for _, stmt := range body.Children {
		g.statement(stmt)
	}
	g.code[endPos] = uint16(g.address())
}
