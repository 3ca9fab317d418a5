package compiler

import "github.com/pellmell/wbc/lang/token"

// Error is returned by Generator.Generate on the first code-generation
// failure: a missing main procedure, a procedure defined twice, a built-in
// call with the wrong argument count, an unknown operator, or a call to an
// undefined procedure (spec.md §4.4, §7).
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return e.Msg + " on " + e.Pos.String()
	}
	return e.Msg
}
