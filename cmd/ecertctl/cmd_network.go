package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNetworkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Inspect the wallet's network",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Switch the wallet to the configured chain, registering it if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			// connect already ran the handshake; verify the result.
			if err := a.Network.VerifyChain(commandContext(cmd), a.Session.RPC); err != nil {
				return err
			}

			d := a.Network.Descriptor()
			fmt.Fprintf(cmd.OutOrStdout(), "on %s (chain id %s)\n", d.ChainName, d.ChainID)
			return nil
		},
	})
	return cmd
}
