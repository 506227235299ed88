package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AzielCF/az-storage/quota/domain"
)

var (
	usageUserIDs     []string
	usageConcurrency int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect and repair the persisted storage usage",
}

var usageSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Recompute usage from the object store and persist it on the profiles",
	Long: `Without --user every profile is resynchronized. A failing user does not stop
the others; the command exits non-zero when any user failed.`,
	RunE: runUsageSync,
}

func init() {
	usageSyncCmd.Flags().StringSliceVarP(&usageUserIDs, "user", "u", nil, "user id to resync, repeatable | example: --user=u1 --user=u2")
	usageSyncCmd.Flags().IntVarP(&usageConcurrency, "concurrency", "c", 0, "parallel resyncs, 0 uses the stored setting")
	usageCmd.AddCommand(usageSyncCmd)
	rootCmd.AddCommand(usageCmd)
}

func runUsageSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	svc, err := buildServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	concurrency := usageConcurrency
	if concurrency <= 0 {
		concurrency = svc.settings.ResyncConcurrency(ctx)
	}

	var synced int
	if len(usageUserIDs) > 0 {
		synced, err = svc.usage.ResyncAll(ctx, usageUserIDs, concurrency)
	} else {
		synced, err = svc.usage.ResyncProfiles(ctx, concurrency)
	}
	logrus.Infof("[QUOTA] Synced %d profiles", synced)

	for _, id := range usageUserIDs {
		usage, uerr := svc.usage.CachedUsage(ctx, id)
		if uerr != nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d files\n", id, domain.FormatBytes(usage.TotalSize), usage.FilesCount)
	}
	if err != nil {
		return fmt.Errorf("resync finished with errors: %w", err)
	}
	return nil
}
