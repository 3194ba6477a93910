package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecert/internal/domain/certificate"
)

func newTokenCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate certificate tokens",
		Long: `Generate random 10-character certificate tokens from [A-Za-z0-9].

Tokens are not cryptographically secure and uniqueness is not checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			for i := 0; i < count; i++ {
				fmt.Fprintln(cmd.OutOrStdout(), certificate.GenerateToken())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of tokens to generate")
	return cmd
}
