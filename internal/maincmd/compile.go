package maincmd

import (
	"context"
	"fmt"
	"io"

	"github.com/mna/mainer"

	"github.com/pellmell/wbc/lang/compiler"
	"github.com/pellmell/wbc/lang/opcode"
)

// Compile runs the full pipeline over the single source file in args and
// prints the resulting bytecode as an address-prefixed mnemonic listing. On
// a code-generation failure, the partial listing generated so far is still
// printed before the error (spec.md §3's "Lifecycle" guarantee).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	code, err := compiler.New(cfg.version()).Compile(src)
	printListing(stdio.Stdout, code)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}

func printListing(w io.Writer, code []uint16) {
	for addr, word := range code {
		if opcode.IsOpcode(word) {
			fmt.Fprintf(w, "%4d  %s\n", addr, opcode.Opcode(word).Name())
			continue
		}
		fmt.Fprintf(w, "%4d  %d\n", addr, int16(word))
	}
}
