// Package driver wires the compiler's stages together: lex+parse, lower to Koopa IR, then either
// print the IR or emit RISC-V assembly, selected by util.Options.Mode.
package driver

import (
	"fmt"

	"sysyc/src/backend/riscv"
	"sysyc/src/frontend"
	"sysyc/src/ir/build"
	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// Run reads opt.Src, compiles it, and returns the textual output opt.Mode selects.
func Run(opt util.Options) (string, error) {
	src, err := util.ReadSource(opt)
	if err != nil {
		return "", fmt.Errorf("could not read source code: %w", err)
	}

	cu, err := frontend.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}

	prog, err := build.Build(cu)
	if err != nil {
		return "", fmt.Errorf("semantic error: %w", err)
	}

	switch opt.Mode {
	case util.ModeKoopa:
		return koopa.Print(prog), nil
	case util.ModeRiscv:
		return riscv.Generate(prog), nil
	default:
		return "", fmt.Errorf("unknown compiler mode")
	}
}
