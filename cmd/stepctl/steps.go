package main

import (
	"fmt"
	"slices"

	"github.com/ad/go-membership-wizard/cmd/stepctl/ui"
	"github.com/ad/go-membership-wizard/internal/models"
	"github.com/ad/go-membership-wizard/internal/services"
	"github.com/spf13/cobra"
)

func stepsCmd(getStore func() *store) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Manage backend membership step records",
	}
	cmd.AddCommand(stepsListCmd(getStore))
	cmd.AddCommand(stepsVerifyCmd(getStore))
	cmd.AddCommand(stepsRequireCmd(getStore))
	cmd.AddCommand(stepsClearCmd(getStore))
	return cmd
}

// parsePlanStep resolves a step argument and checks it belongs to plan.
func parsePlanStep(planName, stepName string) (models.MembershipPlan, models.MembershipStep, error) {
	plan, err := parsePlan(planName)
	if err != nil {
		return "", 0, err
	}
	step, err := models.ParseMembershipStep(stepName)
	if err != nil {
		return "", 0, err
	}
	inPlan := slices.ContainsFunc(services.ProjectSteps(plan, nil).Steps, func(p models.StepProgress) bool {
		return p.Step == step
	})
	if !inPlan {
		return "", 0, fmt.Errorf("step %s is not part of plan %s", step, plan)
	}
	return plan, step, nil
}

func stepsListCmd(getStore func() *store) *cobra.Command {
	var planName string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the step records stored for a plan",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := parsePlan(planName)
			if err != nil {
				return err
			}
			infos, err := getStore().steps.ListByPlan(plan)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("no step records for "+string(plan)))
				return nil
			}

			rows := make([][]string, len(infos))
			for i, info := range infos {
				signer := "-"
				if extra, err := models.ParseSignerExtra(info.ExtraData); err == nil && extra.SignerType != models.SignerTypeUnknown {
					signer = string(extra.SignerType)
				}
				masterID := info.MasterSignerID
				if masterID == "" {
					masterID = "-"
				}
				rows[i] = []string{
					info.Step.String(),
					ui.Bool(info.IsVerifiedOrKeyAdded),
					signer,
					masterID,
					info.UpdatedAt.Format("2006-01-02 15:04:05"),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table(
				[]string{"Step", "Verified", "Signer", "Master signer", "Updated"},
				rows,
			))
			return nil
		},
	}
	planFlag(cmd, &planName)
	return cmd
}

func stepsVerifyCmd(getStore func() *store) *cobra.Command {
	var (
		planName       string
		signerType     string
		masterSignerID string
	)

	cmd := &cobra.Command{
		Use:   "verify <step>",
		Short: "Mark a step as verified or its key as added",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, step, err := parsePlanStep(planName, args[0])
			if err != nil {
				return err
			}

			extraData := ""
			if signerType != "" {
				st := models.ParseSignerType(signerType)
				if st == models.SignerTypeUnknown {
					return fmt.Errorf("unknown signer type %q", signerType)
				}
				extra := models.SignerExtra{SignerType: st}
				if extraData, err = extra.ToJSON(); err != nil {
					return err
				}
			}

			if err := getStore().steps.MarkVerified(plan, step, masterSignerID, extraData); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("%s verified for %s", ui.Accent(step.String()), ui.Accent(string(plan))))
			return nil
		},
	}
	planFlag(cmd, &planName)
	cmd.Flags().StringVar(&signerType, "signer-type", "", "Signer type of the added key (NFC, HARDWARE, ...)")
	cmd.Flags().StringVar(&masterSignerID, "master-signer-id", "", "Master signer id of the added key")
	return cmd
}

func stepsRequireCmd(getStore func() *store) *cobra.Command {
	var planName string

	cmd := &cobra.Command{
		Use:   "require <step>",
		Short: "Reopen a step so the user has to go through it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, step, err := parsePlanStep(planName, args[0])
			if err != nil {
				return err
			}
			if err := getStore().steps.MarkRequired(plan, step); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("%s required again for %s", ui.Accent(step.String()), ui.Accent(string(plan))))
			return nil
		},
	}
	planFlag(cmd, &planName)
	return cmd
}

func stepsClearCmd(getStore func() *store) *cobra.Command {
	var planName string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every step record of a plan; the wizard resets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := parsePlan(planName)
			if err != nil {
				return err
			}
			n, err := getStore().steps.DeleteByPlan(plan)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.WarnMsg("no step records for %s", ui.Accent(string(plan))))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("removed %d step records for %s", n, ui.Accent(string(plan))))
			return nil
		},
	}
	planFlag(cmd, &planName)
	return cmd
}
