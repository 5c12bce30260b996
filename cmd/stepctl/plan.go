package main

import (
	"fmt"

	"github.com/ad/go-membership-wizard/cmd/stepctl/ui"
	"github.com/ad/go-membership-wizard/internal/models"
	"github.com/spf13/cobra"
)

func planCmd(getStore func() *store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show or change the membership plan the bot follows",
	}
	cmd.AddCommand(planShowCmd(getStore))
	cmd.AddCommand(planSetCmd(getStore))
	return cmd
}

func planShowCmd(getStore func() *store) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored membership plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := getStore().settings.GetMembershipPlan()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.KeyValues("",
				ui.KV("Plan", ui.Accent(string(plan))),
				ui.KV("Honey family", ui.Bool(plan.IsHoneyFamily())),
			))
			return nil
		},
	}
}

func planSetCmd(getStore func() *store) *cobra.Command {
	return &cobra.Command{
		Use:   "set <plan>",
		Short: "Store the membership plan; the bot picks it up on restart or /plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := models.ParseMembershipPlan(args[0])
			if err != nil {
				return err
			}
			if err := getStore().settings.SetMembershipPlan(plan); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("plan set to %s", ui.Accent(string(plan))))
			return nil
		},
	}
}
