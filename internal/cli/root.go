// Package cli implements schedctl, an operator tool for inspecting
// recurrence expansion, working hours and live availability.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "SCHEDCTL"

	keyServer   = "server"
	keyTenant   = "tenant"
	keyTimezone = "timezone"
	keyOutput   = "output"
	keyTimeout  = "timeout"
	keyConfig   = "config"
)

var Version = "dev"

// NewRootCmd builds the command tree. Settings resolve flag, then
// SCHEDCTL_* environment, then the --config file, then default.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "schedctl",
		Short:         "Inspect clinic scheduling: recurrence, working hours and availability",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return readConfigFile(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyServer, "http://localhost:8080", "scheduling API base URL")
	flags.String(keyTenant, "", "tenant id")
	flags.String(keyTimezone, "UTC", "business IANA time zone")
	flags.StringP(keyOutput, "o", "yaml", "output format: yaml or json")
	flags.Duration(keyTimeout, 10*time.Second, "API request timeout")
	flags.String(keyConfig, "", "config file (yaml) with server, tenant, timezone, output, timeout")
	_ = v.BindPFlags(flags)

	root.AddCommand(newExpandCmd(v))
	root.AddCommand(newHoursCmd(v))
	root.AddCommand(newSlotsCmd(v))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func readConfigFile(v *viper.Viper) error {
	path := v.GetString(keyConfig)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func location(v *viper.Viper) (*time.Location, error) {
	loc, err := time.LoadLocation(v.GetString(keyTimezone))
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone: %w", err)
	}
	return loc, nil
}

func render(w io.Writer, format string, out any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Window is an interval rendered in the business zone.
type Window struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

func window(start, end time.Time, loc *time.Location) Window {
	return Window{
		Start: start.In(loc).Format(time.RFC3339),
		End:   end.In(loc).Format(time.RFC3339),
	}
}
