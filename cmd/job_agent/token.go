package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/server"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a local access token for development",
	Long:  `Sign an HS256 token with the configured JWT secret and the authenticated role, for calling the API without the identity provider.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}

		sub := uuid.New()
		if tokenSubject != "" {
			sub, err = uuid.Parse(tokenSubject)
			if err != nil {
				return fmt.Errorf("invalid --sub: %w", err)
			}
		}

		token, err := server.NewJWTService(jwtCfg).GenerateToken(sub)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "User ID (default: random)")
	rootCmd.AddCommand(tokenCmd)
}
