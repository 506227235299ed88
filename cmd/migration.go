package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()
		logrus.Info("[MIGRATION] Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// migrate runs AutoMigrate for every table the service owns.
func (s *services) migrate(ctx context.Context) error {
	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"profiles", s.profileRepo.InitSchema},
		{"subscriptions", s.subRepo.InitSchema},
		{"storage_settings", s.settingRepo.InitSchema},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", step.name, err)
		}
		logrus.Debugf("[MIGRATION] %s ready", step.name)
	}
	return nil
}
