package cmd

import (
	"fmt"
	"os"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/memory"

	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm `path/ROM`",
	Short: "print the instructions of a ROM",
	Args:  cobra.ExactArgs(1),
	RunE:  Disasm,
}

func Disasm(cmd *cobra.Command, args []string) error {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	if len(rom) > memory.MaxProgramLen {
		return fmt.Errorf("%w: %d bytes", memory.ErrProgramTooLarge, len(rom))
	}

	out := cmd.OutOrStdout()
	for _, line := range cpu.Disassemble(rom, memory.ProgramStart) {
		fmt.Fprintln(out, line.String())
	}
	return nil
}
