package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kouri/internal/config"
	"kouri/internal/diagnose"
	"kouri/internal/logging"
	"kouri/internal/services"
	"kouri/internal/services/chatapi"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
	logFile   string
	json      bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	store      *config.Store
	config     *config.Config
	configErr  error
	// loadErr is the non-fatal error from reading the file, if any.
	loadErr error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig resolves and loads the configuration once per process. A
// malformed or unreadable file is reported and the defaults are used.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		store, err := config.Open(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("resolve config path: %w", err)
			return
		}
		c.store = store
		cfg, err := store.Load()
		c.loadErr = err
		if err != nil {
			msg := "读取配置文件失败，已使用默认配置"
			if errors.Is(err, config.ErrMalformed) {
				msg = "配置文件格式错误，已使用默认配置"
			}
			logging.WarnWithContext(c.loggerFor(cmd), msg, "config.load_failed",
				logging.String("path", store.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix the file or rerun `kouri config init --overwrite`"),
				logging.String(logging.FieldImpact, "default settings are in effect"),
			)
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() config.Config {
	if c.config == nil {
		return config.Default()
	}
	return *c.config
}

// saveConfig persists cfg and makes it the active record.
func (c *commandContext) saveConfig(cfg config.Config) error {
	if c.store == nil {
		return errors.New("configuration store not initialized")
	}
	if err := c.store.Save(cfg); err != nil {
		return err
	}
	c.config = &cfg
	return nil
}

func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		opts := logging.Options{Level: c.flags.logLevel, Format: c.flags.logFormat, File: c.flags.logFile}
		if cmd != nil {
			opts.Writer = cmd.ErrOrStderr()
		}
		logger, err := logging.New(opts)
		if err != nil && opts.File != "" {
			opts.File = ""
			logger, _ = logging.New(opts)
			if logger != nil {
				logger.Warn("log file unavailable, logging to stderr", logging.Error(err))
			}
		}
		if logger == nil {
			opts.Format = "console"
			logger, _ = logging.New(opts)
		}
		if logger == nil {
			logger = logging.NewNop()
		}
		c.logger = logging.NewComponentLogger(logger, "cli")
	})
	return c.logger
}

func (c *commandContext) client(cmd *cobra.Command) *chatapi.Client {
	return chatapi.NewClient(c.configValue(), chatapi.WithLogger(c.loggerFor(cmd)))
}

// operationContext tags the command context with the operation name and a
// fresh correlation id.
func operationContext(cmd *cobra.Command, operation string) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithOperation(ctx, operation)
	return services.WithRequestID(ctx, uuid.NewString())
}

// reportedError carries a classified failure back to main. Its text is the
// user-facing diagnostic.
type reportedError struct {
	diagnostic diagnose.Diagnostic
	err        error
}

func (e *reportedError) Error() string { return e.diagnostic.String() }

func (e *reportedError) Unwrap() error { return e.err }

// report classifies err, logs it, and returns the error the command should
// surface.
func (c *commandContext) report(ctx context.Context, cmd *cobra.Command, operation string, err error) error {
	if err == nil {
		return nil
	}
	var already *reportedError
	if errors.As(err, &already) {
		return err
	}
	diag := diagnose.Classify(err, operation)
	logging.ErrorWithContext(logging.WithContext(ctx, c.loggerFor(cmd)), "operation failed", "cli.operation_failed",
		logging.String("category", string(diag.Category)),
		logging.String(logging.FieldErrorHint, diag.Remediation),
		logging.Error(err),
	)
	return &reportedError{diagnostic: diag, err: err}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// guardError tags a refused input as a validation failure.
func guardError(operation string, reason error) error {
	return services.Wrap(services.ErrValidation, "cli", operation, "", reason)
}
