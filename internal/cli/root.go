package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ossgate/internal/app"
	"ossgate/internal/config"
)

var (
	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// IOStreams carries the standard streams so commands can be tested.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Loader resolves configuration and wires the services for a command.
type Loader interface {
	Config() (*config.Config, error)
	Services(ctx context.Context, cfg *config.Config) (*app.Services, error)
}

type envLoader struct{}

func (envLoader) Config() (*config.Config, error) {
	return config.Load()
}

func (envLoader) Services(ctx context.Context, cfg *config.Config) (*app.Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return app.Build(ctx, cfg, nil, zap.NewNop())
}

// NewRootCommand creates the `ossctl` command reading configuration from the
// environment.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithArgs(IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}, envLoader{})
}

// NewRootCommandWithArgs creates the `ossctl` command and its children.
func NewRootCommandWithArgs(streams IOStreams, loader Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "ossctl [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Operator tool for the upload credential gateway",
		SilenceErrors:         true,
		SilenceUsage:          true,
	}

	cmd.AddCommand(NewCredentialsCommand(NewCredentialsOptions(streams, loader)))
	cmd.AddCommand(NewSignURLCommand(NewSignURLOptions(streams, loader)))
	cmd.AddCommand(NewTokenCommand(NewTokenOptions(streams, loader)))

	return cmd
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
