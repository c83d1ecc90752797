package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vpoint-tv/vpoint-api/app"
	"github.com/vpoint-tv/vpoint-api/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the super admin, default config, signals and channels",
	Long: `seed is idempotent: existing rows are left alone.
The super admin is taken from ADMIN_NAME and ADMIN_PASSWORD and skipped when they are not set.`,
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

		return database.NewSeeder(store.GetDB()).SeedAll(env.ADMIN_NAME, env.ADMIN_PASSWORD)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
