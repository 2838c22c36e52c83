package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/quanta/pkg/compiler"
	"github.com/agenthands/quanta/pkg/compiler/ast"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [file]",
	Short: "Print the token stream, one token per line",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := compileArg(args)
		if err != nil {
			return err
		}
		for _, tok := range unit.Tokens {
			fmt.Fprintln(cmd.OutOrStdout(), tok.String())
		}
		return nil
	},
}

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Print the syntax tree as indented JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := compileArg(args)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(ast.Dump(unit.Program), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func compileArg(args []string) (*compiler.Unit, error) {
	src, err := readSource(sourceArg(args))
	if err != nil {
		return nil, err
	}
	return compiler.CompileUnit(src)
}
