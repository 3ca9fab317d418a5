package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/pellmell/wbc/lang/ast"
	"github.com/pellmell/wbc/lang/parser"
)

// Parse runs the tokenizer and parser over the single source file in args
// and prints the resulting AST as an indented listing.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	root, err := parser.New().Parse(src)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	fmt.Fprint(stdio.Stdout, ast.Dump(root))
	return nil
}
