package main

import (
	"fmt"
	"strconv"

	"github.com/ad/go-membership-wizard/cmd/stepctl/ui"
	"github.com/ad/go-membership-wizard/internal/services"
	"github.com/spf13/cobra"
)

func estimateCmd(getStore func() *store) *cobra.Command {
	var planName string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Show the wizard as the bot would see it after the next sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := parsePlan(planName)
			if err != nil {
				return err
			}
			infos, err := getStore().steps.ListByPlan(plan)
			if err != nil {
				return err
			}
			snap := services.ProjectSteps(plan, infos)

			rows := make([][]string, len(snap.Steps))
			for i, p := range snap.Steps {
				rows[i] = []string{
					p.Step.String(),
					fmt.Sprintf("%d/%d", p.Current, p.Total),
					ui.State(string(p.State())),
					strconv.Itoa(p.Remaining() * services.MinutesPerSubStep),
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Table([]string{"Step", "Progress", "State", "Minutes"}, rows))
			fmt.Fprint(out, ui.KeyValues("",
				ui.KV("Plan", ui.Accent(string(plan))),
				ui.KV("Completed", snap.Done.String()),
				ui.KV("Remaining", services.FormatRemainingTime(snap.RemainingTime)),
			))
			return nil
		},
	}
	planFlag(cmd, &planName)
	return cmd
}
