package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/palladiogo/internal/app"
	"github.com/specialistvlad/palladiogo/internal/rulectx"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel        string
	logFormat       string
	healthcheckPort int
}

// Execute runs the command line given by args. Help and usage go to outW.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	root := NewRootCommand(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the palladio command tree.
func NewRootCommand(outW io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "palladio",
		Short: "Procedural building generation for polygon scenes",
		Long: `Palladio assigns rule packages to the primitives of a scene and generates
the resulting models, either from job files or from single commands.

The rule engine is configured through the PALLADIO_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().IntVar(&g.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	root.AddCommand(
		newRunCommand(g),
		newAssignCommand(g),
		newGenerateCommand(g),
		newInspectCommand(g),
	)
	return root
}

// withApp builds the application from the global flags and cfg, runs fn
// and closes the application again.
func withApp(cmd *cobra.Command, g *globalFlags, cfg app.Config, fn func(*app.App) error) error {
	engine, err := rulectx.ConfigFromEnv()
	if err != nil {
		return usageError(err)
	}
	cfg.Engine = engine
	cfg.LogLevel = g.logLevel
	cfg.LogFormat = g.logFormat
	cfg.HealthcheckPort = g.healthcheckPort

	valid, err := app.NewConfig(cfg)
	if err != nil {
		return usageError(err)
	}

	a, err := app.New(cmd.OutOrStdout(), valid, nil)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return runErr
}

// checkArgs reports positional argument failures as usage errors.
func checkArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}
