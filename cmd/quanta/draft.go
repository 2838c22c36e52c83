package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/quanta/pkg/assist"
	"github.com/agenthands/quanta/pkg/workspace"
)

var (
	modelName string
	attempts  int
	writeOut  bool
)

var draftCmd = &cobra.Command{
	Use:   `draft "<task>"`,
	Short: "Ask Gemini for a Quanta program that performs a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		apiKey, err := assist.APIKeyFromEnv()
		if err != nil {
			return err
		}
		model, err := assist.NewGeminiModel(ctx, apiKey, modelName)
		if err != nil {
			return err
		}
		defer model.Close()

		d := &assist.Drafter{Model: model, MaxAttempts: attempts}
		draft, err := d.Draft(ctx, args[0])
		if err != nil {
			return err
		}
		logger.Info("drafted", "model", modelName, "attempts", draft.Attempts)

		fmt.Fprintln(cmd.OutOrStdout(), draft.Source)

		if writeOut {
			ws, err := workspace.New(".", maxFileSize)
			if err != nil {
				return err
			}
			if err := ws.WriteSource(workspace.DefaultSource, withNewline(draft.Source)); err != nil {
				return err
			}
			logger.Info("saved", "path", workspace.DefaultSource)
		}
		return nil
	},
}

func init() {
	draftCmd.Flags().StringVar(&modelName, "model", assist.DefaultModel, "Gemini model name")
	draftCmd.Flags().IntVar(&attempts, "attempts", assist.DefaultAttempts, "how many times to ask before giving up")
	draftCmd.Flags().BoolVar(&writeOut, "write", false, "save the program as index.quanta")
}
