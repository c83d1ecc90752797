package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vpoint-tv/vpoint-api/app"
	"github.com/vpoint-tv/vpoint-api/services"
)

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage operator accounts from the shell",
}

var operatorCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create or update an operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(env)
		if err != nil {
			return err
		}
		defer store.Close()

		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		status, _ := cmd.Flags().GetString("status")
		super, _ := cmd.Flags().GetBool("super")

		operators := services.NewOperatorService(store.GetDB())
		result, err := operators.Upsert(cmd.Context(), services.SystemActor, services.OperatorInput{
			Name:     args[0],
			Password: password,
			Role:     role,
			Status:   status,
		})
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("super") && super != result.Operator.IsSuperAdmin {
			if err := operators.SetSuperAdmin(cmd.Context(), services.SystemActor, result.Operator.Name, super); err != nil {
				return err
			}
		}

		verb := "updated"
		if result.Created {
			verb = "created"
		}
		fmt.Printf("operator %s %s (role %s)\n", result.Operator.Name, verb, result.Operator.Role)
		return nil
	},
}

var operatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnv()
		if err != nil {
			return err
		}
		store, err := app.OpenStore(env)
		if err != nil {
			return err
		}
		defer store.Close()

		search, _ := cmd.Flags().GetString("search")
		ops, err := services.NewOperatorService(store.GetDB()).List(cmd.Context(), services.OperatorFilter{Search: search})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tROLE\tSTATUS\tSUPER\tLAST ACTIVE")
		for _, op := range ops {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", op.Name, op.Role, op.Status, op.IsSuperAdmin, op.LastActive.Format("2006-01-02 15:04"))
		}
		w.Flush()

		sum := services.Summarize(ops)
		fmt.Printf("\n%d operators, %d active, %d lead\n", sum.Total, sum.Active, sum.Lead)
		return nil
	},
}

func init() {
	operatorCreateCmd.Flags().String("password", "", "Password (at least 8 characters). Blank keeps the current one")
	operatorCreateCmd.Flags().String("role", "", "Operator, Lead, Analyst, Admin or Moderator")
	operatorCreateCmd.Flags().String("status", "", "Active or Suspended")
	operatorCreateCmd.Flags().Bool("super", false, "Grant (or with --super=false revoke) super admin")

	operatorListCmd.Flags().String("search", "", "Filter by name or role")

	operatorCmd.AddCommand(operatorCreateCmd, operatorListCmd)
	rootCmd.AddCommand(operatorCmd)
}
