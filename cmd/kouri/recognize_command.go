package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const opRecognizeImage = "图片识别"

type recognizeJSON struct {
	Image       string `json:"image"`
	Model       string `json:"model,omitempty"`
	Description string `json:"description"`
}

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recognize <image>",
		Short: "Describe a local image with the configured model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognize(cmd, ctx, args[0])
		},
	}
}

func runRecognize(cmd *cobra.Command, ctx *commandContext, path string) error {
	opCtx := operationContext(cmd, "recognize")
	path = strings.TrimSpace(path)
	if path == "" {
		return ctx.report(opCtx, cmd, opRecognizeImage, guardError("recognize", errImageRequired))
	}
	completion, err := ctx.client(cmd).RecognizeImage(opCtx, path)
	if err != nil {
		return ctx.report(opCtx, cmd, opRecognizeImage, err)
	}
	text, err := completion.FirstContent()
	if err != nil {
		return ctx.report(opCtx, cmd, opRecognizeImage, err)
	}
	if ctx.flags.json {
		return writeJSON(cmd, recognizeJSON{Image: path, Model: completion.Model, Description: text})
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
