package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ossgate/internal/objectkey"
	"ossgate/internal/service"
)

type CredentialsOptions struct {
	Prefix     string
	ShowSecret bool

	loader Loader
	IOStreams
}

func NewCredentialsOptions(streams IOStreams, loader Loader) *CredentialsOptions {
	return &CredentialsOptions{IOStreams: streams, loader: loader}
}

func NewCredentialsCommand(o *CredentialsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Issue a temporary upload credential",
		Example: `  # Issue a credential scoped to the default upload prefix
  ossctl credentials

  # Scope the credential to one directory and include the temporary secret
  ossctl credentials --prefix real-estate/10001 --show-secret`,
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

	cmd.Flags().StringVarP(&o.Prefix, "prefix", "p", "", "Restrict the credential to this key prefix")
	cmd.Flags().BoolVar(&o.ShowSecret, "show-secret", false, "Include the temporary access key secret")

	return cmd
}

func (o *CredentialsOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *CredentialsOptions) Validate() error {
	if o.Prefix == "" {
		return nil
	}
	prefix, err := objectkey.CleanPrefix(o.Prefix)
	if err != nil {
		return fmt.Errorf("invalid prefix %q: %w", o.Prefix, err)
	}
	o.Prefix = prefix
	return nil
}

func (o *CredentialsOptions) Run() error {
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

	cred, err := svc.Credentials.Get(ctx, service.CredentialScope{Prefix: o.Prefix})
	if err != nil {
		return err
	}
	if !o.ShowSecret {
		public := cred.Public()
		cred = &public
	}
	return printJSON(o.Out, cred)
}
