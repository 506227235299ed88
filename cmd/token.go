package cmd

import (
	"fmt"

	"github.com/AzielCF/az-storage/core/config"
	"github.com/AzielCF/az-storage/pkg/security"
	"github.com/spf13/cobra"
)

var tokenRole string

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.App.Environment == "production" {
			return fmt.Errorf("token issuing is disabled in production")
		}
		role := security.Role(tokenRole)
		if role != security.RoleUser && role != security.RoleAdmin {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		tok, err := newSigner(appConfig).GenerateToken(args[0], role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", string(security.RoleUser), "token role | example: --role=admin")
	rootCmd.AddCommand(tokenCmd)
}

func newSigner(cfg *config.Config) *security.Signer {
	return security.NewSigner(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.TokenTTL)
}
