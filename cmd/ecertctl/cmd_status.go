package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show chain, contract and signer status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.Certificates.Status(commandContext(cmd), a.Session.Client)
			if err != nil {
				return err
			}

			signer := "-"
			if a.Signer != nil {
				signer = a.Signer.Opts.From.Hex()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "chain\t%s (%s)\n", a.Network.Descriptor().ChainName, st.ChainID)
			fmt.Fprintf(w, "block\t%d\n", st.BlockNumber)
			fmt.Fprintf(w, "contract\t%s\n", a.Contract.Hex())
			fmt.Fprintf(w, "owner\t%s\n", st.Owner.Hex())
			fmt.Fprintf(w, "signer\t%s\n", signer)
			return w.Flush()
		},
	}
}
