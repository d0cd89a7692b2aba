package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kouri/internal/profile"
	"kouri/internal/textutil"
)

const shellPrompt = "kouri> "

const shellHelp = `Commands:
  generate <description>   generate a character profile
  polish <instruction>     polish the current profile
  import <path>            load a profile from a text file
  export <path>            write the current profile to a file
  show                     display the current profile
  test                     probe the endpoint and send a test message
  recognize <image>        describe a local image
  image <prompt>           generate an image
  save-image [path]        download the last generated image
  config                   display the active configuration
  set <key> <value>        update one configuration value
  help                     show this help
  exit                     leave the shell`

var errShellUsage = errors.New("用法错误，输入 help 查看命令")

// liveBackend builds a client from the active configuration on every call so
// `set` takes effect without restarting the shell.
type liveBackend struct {
	ctx *commandContext
	cmd *cobra.Command
}

func (b liveBackend) Ready() error { return b.ctx.client(b.cmd).Ready() }

func (b liveBackend) GenerateCharacterProfile(ctx context.Context, description string) (string, error) {
	return b.ctx.client(b.cmd).GenerateCharacterProfile(ctx, description)
}

func (b liveBackend) PolishCharacterProfile(ctx context.Context, text, instruction string) (string, error) {
	return b.ctx.client(b.cmd).PolishCharacterProfile(ctx, text, instruction)
}

type shell struct {
	cmd        *cobra.Command
	ctx        *commandContext
	session    *profile.Session
	lastImage  string
	lastPrompt string
}

func newShellCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session that keeps one profile across commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := &shell{
				cmd:     cmd,
				ctx:     ctx,
				session: profile.NewSession(liveBackend{ctx: ctx, cmd: cmd}, ctx.loggerFor(cmd)),
			}
			return sh.run(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// run reads one command per line until EOF or exit. Failures are printed and
// the loop continues.
func (s *shell) run(in io.Reader, out, errOut io.Writer) error {
	lines := newLineReader(in, out)
	fmt.Fprintln(out, "输入 help 查看可用命令")
	for {
		raw, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		verb = strings.ToLower(verb)
		rest = strings.TrimSpace(rest)
		if verb == "exit" || verb == "quit" {
			return nil
		}
		if err := s.dispatch(verb, rest, out); err != nil {
			fmt.Fprintln(errOut, err)
		}
		if ctx := s.cmd.Context(); ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *shell) dispatch(verb, rest string, out io.Writer) error {
	switch verb {
	case "help", "?":
		fmt.Fprintln(out, shellHelp)
		return nil
	case "generate":
		opCtx := operationContext(s.cmd, "profile generate")
		if err := s.session.Generate(opCtx, rest); err != nil {
			return s.ctx.report(opCtx, s.cmd, opGenerateProfile, err)
		}
		fmt.Fprintln(out, s.session.Text())
		return nil
	case "polish":
		opCtx := operationContext(s.cmd, "profile polish")
		if err := s.session.Polish(opCtx, rest); err != nil {
			return s.ctx.report(opCtx, s.cmd, opPolishProfile, err)
		}
		fmt.Fprintln(out, s.session.Text())
		return nil
	case "import":
		if err := s.session.Import(rest); err != nil {
			return s.ctx.report(operationContext(s.cmd, "profile import"), s.cmd, opImportProfile, err)
		}
		fmt.Fprintf(out, "已导入 %s\n", rest)
		return nil
	case "export":
		rest = textutil.WithDefaultExt(rest, profileExt)
		if err := s.session.Export(rest); err != nil {
			return s.ctx.report(operationContext(s.cmd, "profile export"), s.cmd, opExportProfile, err)
		}
		fmt.Fprintf(out, "人设已保存到 %s\n", rest)
		return nil
	case "show":
		return showProfile(s.cmd, s.ctx, s.session)
	case "test":
		return runTest(s.cmd, s.ctx)
	case "recognize":
		return runRecognize(s.cmd, s.ctx, rest)
	case "image":
		url, err := runImage(s.cmd, s.ctx, rest, "")
		if url != "" {
			s.lastImage = url
			s.lastPrompt = rest
		}
		return err
	case "save-image":
		if s.lastImage == "" {
			return errors.New("请先生成图片")
		}
		if rest == "" {
			rest = textutil.SanitizeFileName(s.lastPrompt)
			if rest == "" {
				rest = "image"
			}
		}
		rest = textutil.WithDefaultExt(rest, imageExt)
		if _, err := saveGeneratedImage(s.cmd, s.ctx, s.lastImage, rest); err != nil {
			return err
		}
		fmt.Fprintf(out, "图片已保存到 %s\n", rest)
		return nil
	case "config":
		return showConfig(s.cmd, s.ctx, false)
	case "set":
		key, value, ok := strings.Cut(rest, " ")
		if !ok {
			return errShellUsage
		}
		return setConfigValue(s.cmd, s.ctx, key, value)
	default:
		return fmt.Errorf("未知命令 %q，输入 help 查看命令", verb)
	}
}
