package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Notification housekeeping",
	}

	var days int
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete read notifications older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			retention := rt.cfg.Maintenance.Retention()
			if days > 0 {
				retention = time.Duration(days) * 24 * time.Hour
			}
			if retention <= 0 {
				return fmt.Errorf("retention window must be positive")
			}

			pool := rt.pg.PoolHandle()
			notifications := service.NewNotificationService(service.NotificationDependencies{
				NotificationRepo: repository.NewNotificationRepository(pool),
				UserRepo:         repository.NewUserRepository(pool),
				Logger:           rt.logger,
			})
			removed, err := notifications.PurgeRead(cmd.Context(), retention)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d read notifications older than %s\n", removed, retention)
			return nil
		},
	}
	purge.Flags().IntVar(&days, "days", 0, "override NOTIFY_RETENTION_DAYS")

	cmd.AddCommand(purge)
	return cmd
}
