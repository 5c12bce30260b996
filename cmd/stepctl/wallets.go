package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ad/go-membership-wizard/cmd/stepctl/ui"
	"github.com/ad/go-membership-wizard/internal/models"
	"github.com/spf13/cobra"
)

func walletsCmd(getStore func() *store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallets",
		Short: "Manage the user's assisted wallets",
	}
	cmd.AddCommand(walletsListCmd(getStore))
	cmd.AddCommand(walletsAddCmd(getStore))
	cmd.AddCommand(walletsInheritanceCmd(getStore))
	cmd.AddCommand(walletsRemoveCmd(getStore))
	return cmd
}

func walletsListCmd(getStore func() *store) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List assisted wallets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wallets, err := getStore().wallets.GetAll()
			if err != nil {
				return err
			}
			if len(wallets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("no assisted wallets"))
				return nil
			}

			rows := make([][]string, len(wallets))
			for i, w := range wallets {
				rows[i] = []string{
					w.LocalID,
					string(w.Plan),
					ui.Bool(w.IsSetupInheritance),
					w.CreatedAt.Format("2006-01-02 15:04:05"),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table(
				[]string{"ID", "Plan", "Inheritance", "Created"},
				rows,
			))
			return nil
		},
	}
}

func walletsAddCmd(getStore func() *store) *cobra.Command {
	var (
		planName    string
		inheritance bool
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Register an assisted wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := parsePlan(planName)
			if err != nil {
				return err
			}
			wallet := &models.AssistedWallet{
				LocalID:            args[0],
				Plan:               plan,
				IsSetupInheritance: inheritance,
			}
			if err := getStore().wallets.Upsert(wallet); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("wallet %s stored", ui.Accent(wallet.LocalID)))
			return nil
		},
	}
	planFlag(cmd, &planName)
	cmd.Flags().BoolVar(&inheritance, "inheritance", false, "Inheritance is already set up")
	return cmd
}

func walletsInheritanceCmd(getStore func() *store) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "inheritance <id>",
		Short: "Mark inheritance as set up for a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := getStore().wallets.SetInheritance(args[0], !unset)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("wallet %s not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("inheritance for %s: %s", ui.Accent(args[0]), ui.Bool(!unset)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the inheritance flag instead")
	return cmd
}

func walletsRemoveCmd(getStore func() *store) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an assisted wallet",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := getStore().wallets.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("removed wallet %s", ui.Accent(args[0])))
			return nil
		},
	}
}
