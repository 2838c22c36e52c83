package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenthands/quanta/pkg/compiler"
	"github.com/agenthands/quanta/pkg/compiler/emitter"
	"github.com/agenthands/quanta/pkg/workspace"
)

var (
	outDir     string
	endMarkers bool
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile a .quanta file into Python",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sourceArg(args)
		src, err := readSource(path)
		if err != nil {
			return err
		}

		target, err := compiler.Compile(src, emitterOptions()...)
		if err != nil {
			return err
		}

		ws, err := workspace.New(outDir, maxFileSize)
		if err != nil {
			return err
		}
		name := workspace.TargetName(filepath.Base(path))
		if err := ws.WriteTarget(name, withNewline(target)); err != nil {
			return err
		}

		logger.Info("built", "source", path, "target", filepath.Join(ws.Root, name))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory for generated Python")
	buildCmd.Flags().BoolVar(&endMarkers, "end-markers", false, "emit a '# end' comment after every block")
}

func emitterOptions() []emitter.Option {
	if endMarkers {
		return []emitter.Option{emitter.WithEndMarkers()}
	}
	return nil
}

func withNewline(text string) string {
	if text == "" {
		return text
	}
	return text + "\n"
}
