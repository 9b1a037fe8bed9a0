package cli

import (
	"fmt"
	"time"

	"clinicsched/internal/scheduling/hours"
	"clinicsched/internal/workinghours/loader"
	"clinicsched/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type HoursOutput struct {
	Date    string   `json:"date" yaml:"date"`
	Weekday string   `json:"weekday" yaml:"weekday"`
	Open    []Window `json:"open" yaml:"open"`
}

func newHoursCmd(v *viper.Viper) *cobra.Command {
	var (
		file string
		date string
		days int
	)

	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Resolve a working hours YAML file into open intervals per date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := location(v)
			if err != nil {
				return err
			}
			first, err := time.ParseInLocation("2006-01-02", date, loc)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD): %w", err)
			}

			wh, err := loader.Load(file, logger.New(logger.Config{Level: logger.WARN, Format: logger.TEXT, Output: cmd.ErrOrStderr()}))
			if err != nil {
				return err
			}

			out := make([]HoursOutput, 0, days)
			for i := 0; i < days; i++ {
				day := first.AddDate(0, 0, i)
				intervals, err := hours.Resolve(day, wh, loc)
				if err != nil {
					return fmt.Errorf("%s: %w", day.Format("2006-01-02"), err)
				}
				row := HoursOutput{
					Date:    day.Format("2006-01-02"),
					Weekday: hours.WeekdayName(day.Weekday()),
					Open:    []Window{},
				}
				for _, iv := range intervals {
					row.Open = append(row.Open, window(iv.Start, iv.End, loc))
				}
				out = append(out, row)
			}
			return render(cmd.OutOrStdout(), v.GetString(keyOutput), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&file, "file", "configs/working_hours.yaml", "working hours YAML file")
	f.StringVar(&date, "date", time.Now().Format("2006-01-02"), "first date, YYYY-MM-DD")
	f.IntVar(&days, "days", 7, "number of dates to resolve")

	return cmd
}
