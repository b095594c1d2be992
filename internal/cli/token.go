package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ossgate/internal/objectkey"
	"ossgate/internal/service"
)

type TokenOptions struct {
	OwnerID string

	loader Loader
	IOStreams
}

type tokenOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewTokenOptions(streams IOStreams, loader Loader) *TokenOptions {
	return &TokenOptions{IOStreams: streams, loader: loader}
}

// NewTokenCommand mints a bearer token for local testing of the upload routes.
func NewTokenCommand(o *TokenOptions) *cobra.Command {
	return &cobra.Command{
		Use:                   "token OWNER",
		DisableFlagsInUseLine: true,
		Short:                 "Mint a bearer token carrying an owner id",
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
}

func (o *TokenOptions) Complete(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one OWNER is required")
	}
	o.OwnerID = args[0]
	return nil
}

func (o *TokenOptions) Validate() error {
	if !objectkey.ValidOwner(o.OwnerID) {
		return fmt.Errorf("invalid owner id %q", o.OwnerID)
	}
	return nil
}

func (o *TokenOptions) Run() error {
	cfg, err := o.loader.Config()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is not configured")
	}

	token, expiresAt, err := service.NewTokenService(cfg.JWT).Issue(o.OwnerID)
	if err != nil {
		return err
	}
	return printJSON(o.Out, tokenOutput{Token: token, ExpiresAt: expiresAt})
}
