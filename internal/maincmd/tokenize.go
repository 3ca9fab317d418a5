package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/pellmell/wbc/lang/scanner"
	"github.com/pellmell/wbc/lang/token"
)

// Tokenize runs the tokenizer over the single source file in args and
// prints one line per token: "line:col: kind lexeme".
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	s := scanner.New(src)
	for {
		tok := s.Next()
		fmt.Fprintf(stdio.Stdout, "%s: %s\n", tok.Pos, tok)
		if tok.Kind == token.EOF {
			return nil
		}
	}
}
