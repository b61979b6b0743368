package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/docfoundry/moniker-strip/internal/tui"
)

var (
	flagWatchTheme        string
	flagWatchPollInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <eval-id> <run-id>",
	Short: "Watch a running cloud eval interactively",
	Long: `Watch a cloud eval run in an interactive terminal view.

Polls the run status until it completes and shows the per-item grader
results. Press q to stop watching.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		client, err := newFoundryClient(cfg)
		if err != nil {
			return err
		}

		interval := flagWatchPollInterval
		if interval <= 0 {
			interval = cfg.PollIntervalDuration
		}

		w := &tui.Watch{
			Client:       client,
			EvalID:       args[0],
			RunID:        args[1],
			PollInterval: interval,
			ThemeName:    flagWatchTheme,
		}
		return w.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchTheme, "theme", "dark", "color theme: dark, light")
	watchCmd.Flags().DurationVar(&flagWatchPollInterval, "poll-interval", 0, "run status poll interval (default: from config, 3s)")
	rootCmd.AddCommand(watchCmd)
}
