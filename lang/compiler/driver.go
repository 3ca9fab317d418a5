// Package compiler implements the code generator (spec.md §4.4) and the
// Compiler driver (spec.md §4.5) that composes it with lang/parser.
package compiler

import (
	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/parser"
)

// Compiler is the façade described in spec.md §4.5: it owns a Parser and a
// Generator and exposes the one entry point external callers need. It is
// safe to reuse across independent sources.
type Compiler struct {
	version Version
	parser  *parser.Parser
	gen     *Generator
}

// New returns a Compiler targeting version, ready to compile source text.
func New(version Version) *Compiler {
	return &Compiler{
		version: version,
		parser:  parser.New(),
		gen:     NewGenerator(version),
	}
}

// Compile tokenizes, parses and generates code for source in one call. On a
// parse error it returns a *parser.Error, which carries the source position
// of the failure; on a code-generation error, a *compiler.Error, which
// carries one where the failure has one (a missing main procedure and a call
// to an undefined procedure have none) (spec.md §7).
func (c *Compiler) Compile(source string) ([]uint16, error) {
	root, err := c.parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return c.gen.Generate(root)
}

// Parse exposes just the parsing stage, for callers (such as the "parse"
// CLI verb) that want the AST without generating code.
func (c *Compiler) Parse(source string) (*ast.Node, error) {
	return c.parser.Parse(source)
}
