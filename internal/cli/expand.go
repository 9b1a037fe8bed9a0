package cli

import (
	"fmt"
	"time"

	"clinicsched/internal/scheduling/recurrence"
	"clinicsched/pkg/model"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ExpandOutput struct {
	Instances      []Window `json:"instances" yaml:"instances"`
	CeilingReached bool     `json:"ceilingReached" yaml:"ceiling_reached"`
}

func newExpandCmd(v *viper.Viper) *cobra.Command {
	var (
		start     string
		duration  time.Duration
		frequency string
		interval  int
		count     int
		endDate   string
		ceiling   int
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the instances a recurrence rule produces, base first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := location(v)
			if err != nil {
				return err
			}
			base, err := time.ParseInLocation("2006-01-02T15:04", start, loc)
			if err != nil {
				return fmt.Errorf("invalid --start (want YYYY-MM-DDTHH:MM): %w", err)
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}

			rule := model.RecurrenceRule{Frequency: frequency, Interval: interval}
			if cmd.Flags().Changed("count") {
				rule.Count = &count
			}
			if endDate != "" {
				d, err := time.ParseInLocation("2006-01-02", endDate, loc)
				if err != nil {
					return fmt.Errorf("invalid --end-date (want YYYY-MM-DD): %w", err)
				}
				rule.EndDate = &d
			}

			exp := recurrence.ExpandWithCeiling(model.NewInterval(base, base.Add(duration)), rule, loc, ceiling)
			out := ExpandOutput{
				Instances:      []Window{window(base, base.Add(duration), loc)},
				CeilingReached: exp.CeilingReached,
			}
			for _, iv := range exp.Instances {
				out.Instances = append(out.Instances, window(iv.Start, iv.End, loc))
			}
			return render(cmd.OutOrStdout(), v.GetString(keyOutput), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&start, "start", "", "first instance start, YYYY-MM-DDTHH:MM in --timezone")
	f.DurationVar(&duration, "duration", 30*time.Minute, "instance length")
	f.StringVar(&frequency, "frequency", model.FrequencyWeekly, "daily, weekly or monthly")
	f.IntVar(&interval, "interval", 1, "step between instances")
	f.IntVar(&count, "count", 0, "total instances including the first")
	f.StringVar(&endDate, "end-date", "", "last date an instance may fall on, inclusive")
	f.IntVar(&ceiling, "ceiling", recurrence.DefaultCeiling, "maximum instances after the first")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}
