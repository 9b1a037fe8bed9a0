package cli

import (
	"context"
	"fmt"

	"clinicsched/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSlotsCmd(v *viper.Viper) *cobra.Command {
	var (
		q         client.SlotQuery
		date      string
		suggest   bool
		daysAhead int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Query a running scheduling service for free slots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q.TenantID = v.GetString(keyTenant)
			if q.TenantID == "" {
				return fmt.Errorf("--tenant is required")
			}

			c := client.NewSchedulingClient(v.GetString(keyServer), v.GetDuration(keyTimeout)).WithTenant(q.TenantID)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if suggest {
				days, err := c.Suggestions(ctx, q, daysAhead)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), v.GetString(keyOutput), days)
			}

			if date == "" {
				return fmt.Errorf("--date is required unless --suggest is set")
			}
			slots, err := c.Slots(ctx, q, date)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v.GetString(keyOutput), slots)
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.UserID, "user", "", "user id")
	f.StringVar(&q.ProviderID, "provider", "", "provider id")
	f.StringVar(&q.ResourceID, "resource", "", "resource id")
	f.IntVar(&q.Duration, "duration", 30, "slot length in minutes")
	f.StringVar(&date, "date", "", "date, YYYY-MM-DD")
	f.BoolVar(&suggest, "suggest", false, "list suggestions over the coming days instead")
	f.IntVar(&daysAhead, "days-ahead", 0, "days searched with --suggest; server default when 0")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
