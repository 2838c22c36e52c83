package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/quanta/pkg/compiler"
	"github.com/agenthands/quanta/pkg/interp"
)

var (
	gas       int
	printCode bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile a .quanta file and execute the generated Python",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sourceArg(args)
		src, err := readSource(path)
		if err != nil {
			return err
		}

		target, err := compiler.Compile(src)
		if err != nil {
			return err
		}
		if printCode {
			fmt.Fprintln(cmd.OutOrStdout(), withNewline(target))
		}

		logger.Debug("executing", "source", path, "gas", gas)
		in := interp.New(interp.WithGas(gas), interp.WithStdout(cmd.OutOrStdout()))
		if err := in.Run(cmd.Context(), target); err != nil {
			return fmt.Errorf("running %s: %w", path, err)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&gas, "gas", interp.DefaultGas, "maximum number of VM instructions")
	runCmd.Flags().BoolVar(&printCode, "print", false, "print the generated Python before running it")
}
