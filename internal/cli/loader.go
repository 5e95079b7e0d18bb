package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/strataml/strata/internal/compiler"
	"github.com/strataml/strata/internal/ir"
)

// LoadError represents an error that occurred during program loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProgram reads a CUE program file and compiles it to an IR
// module. The file must define a top-level "program" struct.
func LoadProgram(path string) (*ir.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading program file: %v", err)}
	}
	return CompileProgramSource(path, src)
}

// CompileProgramSource compiles CUE source bytes to an IR module.
// filename is used for error positions only.
func CompileProgramSource(filename string, src []byte) (*ir.Module, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing CUE: %v", err)}
	}

	progVal := v.LookupPath(cue.ParsePath("program"))
	if !progVal.Exists() {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: "no top-level \"program\" struct found", Pos: v.Pos()}
	}

	m, err := compiler.CompileProgram(progVal)
	if err != nil {
		return nil, fmt.Errorf("compiling program: %w", err)
	}
	return m, nil
}
