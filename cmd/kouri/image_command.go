package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kouri/internal/imagefile"
	"kouri/internal/textutil"
)

const (
	opGenerateImage = "图片生成"
	imageExt        = ".png"
)

var (
	errImageRequired  = errors.New("请选择图片文件")
	errPromptRequired = errors.New("请输入图片描述")
)

type imageJSON struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	URL    string `json:"url"`
	Saved  string `json:"saved,omitempty"`
	Bytes  int    `json:"bytes,omitempty"`
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	var savePath string
	cmd := &cobra.Command{
		Use:   "image <prompt>",
		Short: "Generate an image from a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runImage(cmd, ctx, strings.Join(args, " "), savePath)
			return err
		},
	}
	cmd.Flags().StringVarP(&savePath, "save", "s", "", "Download the image and save it here (.png or .jpg)")
	return cmd
}

// runImage generates an image for prompt and returns its URL.
func runImage(cmd *cobra.Command, ctx *commandContext, prompt, savePath string) (string, error) {
	opCtx := operationContext(cmd, "image")
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ctx.report(opCtx, cmd, opGenerateImage, guardError("image", errPromptRequired))
	}
	cfg := ctx.configValue()
	url, err := ctx.client(cmd).GenerateImage(opCtx, prompt)
	if err != nil {
		return "", ctx.report(opCtx, cmd, opGenerateImage, err)
	}
	result := imageJSON{Prompt: prompt, Size: cfg.ImageSize(), URL: url}

	if savePath = textutil.WithDefaultExt(savePath, imageExt); savePath != "" {
		size, err := saveGeneratedImage(cmd, ctx, url, savePath)
		if err != nil {
			return url, err
		}
		result.Saved = savePath
		result.Bytes = size
	}

	if ctx.flags.json {
		return url, writeJSON(cmd, result)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, url)
	if result.Saved != "" {
		fmt.Fprintf(out, "图片已保存到 %s (%s)\n", result.Saved, humanize.IBytes(uint64(result.Bytes)))
	}
	return url, nil
}

// saveGeneratedImage downloads url and writes it to path, returning the number
// of bytes fetched.
func saveGeneratedImage(cmd *cobra.Command, ctx *commandContext, url, path string) (int, error) {
	opCtx := operationContext(cmd, "image save")
	client := &http.Client{Timeout: ctx.configValue().RequestTimeout()}
	img, err := imagefile.Download(opCtx, client, url)
	if err != nil {
		return 0, ctx.report(opCtx, cmd, opGenerateImage, err)
	}
	if err := imagefile.Save(path, img); err != nil {
		return 0, ctx.report(opCtx, cmd, opGenerateImage, err)
	}
	return len(img.Data), nil
}
