package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"ecert/internal/domain/certificate"
)

func newOwnerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "Print the contract owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			owner, err := a.Certificates.GetOwner(commandContext(cmd), a.Session.Client)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), owner.Hex())
			return nil
		},
	}
}

func newMinterCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minter",
		Short: "Manage accounts allowed to mint certificates",
	}

	check := &cobra.Command{
		Use:   "check <address>",
		Short: "Report whether an account is a minter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := certificate.ParseAddress(args[0])
			if err != nil {
				return err
			}
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.Certificates.IsMinter(commandContext(cmd), account, a.Session.Client)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s minter=%t\n", account.Hex(), ok)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <address>",
		Short: "Authorize an account to mint (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := certificate.ParseAddress(args[0])
			if err != nil {
				return err
			}
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.Certificates.AddMinter(commandContext(cmd), account, a.Signer)
			return printReceipt(cmd, opts, receipt, err)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <address>",
		Short: "Revoke an account's minting right (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := certificate.ParseAddress(args[0])
			if err != nil {
				return err
			}
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.Certificates.RemoveMinter(commandContext(cmd), account, a.Signer)
			return printReceipt(cmd, opts, receipt, err)
		},
	}

	cmd.AddCommand(check, add, remove)
	return cmd
}

func newCertCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Validate or burn certificates",
	}

	validate := &cobra.Command{
		Use:   "validate <token>",
		Short: "Report whether a certificate token is valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := certificate.ValidateToken(args[0]); err != nil {
				return err
			}
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			valid, err := a.Certificates.IsValidCertificate(commandContext(cmd), args[0], a.Session.Client)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s valid=%t\n", args[0], valid)
			return nil
		},
	}

	burn := &cobra.Command{
		Use:   "burn <token>",
		Short: "Burn a certificate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := certificate.ValidateToken(args[0]); err != nil {
				return err
			}
			a, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			receipt, err := a.Certificates.BurnCertificate(commandContext(cmd), args[0], a.Signer)
			return printReceipt(cmd, opts, receipt, err)
		},
	}

	cmd.AddCommand(validate, burn)
	return cmd
}

// printReceipt reports a mined transaction. A reverted receipt is printed
// before the error is returned. With --verbose the whole receipt is dumped to
// stderr.
func printReceipt(cmd *cobra.Command, opts *options, receipt *types.Receipt, err error) error {
	if receipt != nil {
		if opts.verbose {
			spew.Fdump(cmd.ErrOrStderr(), receipt)
		}
		status := "success"
		if receipt.Status != types.ReceiptStatusSuccessful {
			status = "reverted"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tx %s block %s %s\n", receipt.TxHash.Hex(), receipt.BlockNumber, status)
	}
	return err
}
