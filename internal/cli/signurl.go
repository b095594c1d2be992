package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

type SignURLOptions struct {
	Path    string
	Expires time.Duration

	loader Loader
	IOStreams
}

func NewSignURLOptions(streams IOStreams, loader Loader) *SignURLOptions {
	return &SignURLOptions{IOStreams: streams, loader: loader}
}

func NewSignURLCommand(o *SignURLOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "sign-url PATH",
		DisableFlagsInUseLine: true,
		Short:                 "Print a time-limited GET URL for an object",
		Example: `  # Sign for the configured default expiry
  ossctl sign-url avatars/10001_1754417659021.jpg

  # Sign for one week
  ossctl sign-url real-estate/10001_house.png --expires 168h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run()
		},
	}

	cmd.Flags().DurationVarP(&o.Expires, "expires", "e", 0, "URL lifetime (default: signing.default_expiry)")

	return cmd
}

func (o *SignURLOptions) Complete(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one PATH is required")
	}
	o.Path = args[0]
	return nil
}

func (o *SignURLOptions) Validate() error {
	if o.Path == "" {
		return fmt.Errorf("PATH is required")
	}
	if o.Expires < 0 {
		return fmt.Errorf("--expires must not be negative")
	}
	return nil
}

func (o *SignURLOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := o.loader.Config()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	svc, err := o.loader.Services(ctx, cfg)
	if err != nil {
		return err
	}

	url, err := svc.Signer.SignURL(ctx, o.Path, o.Expires)
	if err != nil {
		return err
	}
	fmt.Fprintln(o.Out, url)
	return nil
}
