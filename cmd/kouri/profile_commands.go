package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kouri/internal/profile"
	"kouri/internal/textutil"
)

const (
	opGenerateProfile = "生成人设"
	opPolishProfile   = "润色人设"
	opImportProfile   = "导入人设"
	opExportProfile   = "导出人设"

	profileExt = ".txt"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Generate, polish, and inspect character profiles",
	}
	profileCmd.AddCommand(newProfileGenerateCommand(ctx))
	profileCmd.AddCommand(newProfilePolishCommand(ctx))
	profileCmd.AddCommand(newProfileShowCommand(ctx))
	return profileCmd
}

func (c *commandContext) newSession(cmd *cobra.Command) *profile.Session {
	return profile.NewSession(c.client(cmd), c.loggerFor(cmd))
}

func newProfileGenerateCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a character profile from a short description",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := operationContext(cmd, "profile generate")
			session := ctx.newSession(cmd)
			if err := session.Generate(opCtx, strings.Join(args, " ")); err != nil {
				return ctx.report(opCtx, cmd, opGenerateProfile, err)
			}
			return emitProfile(cmd, ctx, session, outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the profile to this file")
	return cmd
}

func newProfilePolishCommand(ctx *commandContext) *cobra.Command {
	var inPath string
	var outPath string
	cmd := &cobra.Command{
		Use:   "polish <instruction>",
		Short: "Rewrite an existing profile following an instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := operationContext(cmd, "profile polish")
			session := ctx.newSession(cmd)
			if strings.TrimSpace(inPath) != "" {
				if err := session.Import(inPath); err != nil {
					return ctx.report(opCtx, cmd, opImportProfile, err)
				}
			}
			if err := session.Polish(opCtx, strings.Join(args, " ")); err != nil {
				return ctx.report(opCtx, cmd, opPolishProfile, err)
			}
			return emitProfile(cmd, ctx, session, outPath)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Profile file to polish")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the polished profile to this file")
	return cmd
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Import a profile file and display it",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := operationContext(cmd, "profile show")
			session := ctx.newSession(cmd)
			if err := session.Import(inPath); err != nil {
				return ctx.report(opCtx, cmd, opImportProfile, err)
			}
			return showProfile(cmd, ctx, session)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Profile file to display")
	return cmd
}

// emitProfile prints the session text and exports it when outPath is set.
func emitProfile(cmd *cobra.Command, ctx *commandContext, session *profile.Session, outPath string) error {
	outPath = textutil.WithDefaultExt(outPath, profileExt)
	if strings.TrimSpace(outPath) != "" {
		if err := session.Export(outPath); err != nil {
			return ctx.report(operationContext(cmd, "profile export"), cmd, opExportProfile, err)
		}
	}
	if ctx.flags.json {
		return writeJSON(cmd, profileView(session.Snapshot()))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, session.Text())
	if strings.TrimSpace(outPath) != "" {
		fmt.Fprintf(out, "人设已保存到 %s\n", outPath)
	}
	return nil
}

func showProfile(cmd *cobra.Command, ctx *commandContext, session *profile.Session) error {
	snap := session.Snapshot()
	if ctx.flags.json {
		return writeJSON(cmd, profileView(snap))
	}
	rows := [][]string{
		{"state", snap.State.String()},
		{"provenance", string(snap.Provenance)},
		{"size", humanize.IBytes(uint64(len(snap.Text)))},
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
	fmt.Fprintln(out, snap.Text)
	return nil
}

type profileJSON struct {
	State      string `json:"state"`
	Provenance string `json:"provenance"`
	Bytes      int    `json:"bytes"`
	Text       string `json:"text"`
}

func profileView(snap profile.Snapshot) profileJSON {
	return profileJSON{
		State:      snap.State.String(),
		Provenance: string(snap.Provenance),
		Bytes:      len(snap.Text),
		Text:       snap.Text,
	}
}
