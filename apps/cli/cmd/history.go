package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/curlkit/curlkit/packages/config"
	"github.com/curlkit/curlkit/packages/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear recorded requests",
	Long: `List or clear requests recorded with --record.

Examples:
  curlkit history
  curlkit history --limit 50
  curlkit history clear`,
	RunE: historyListCommand,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded requests",
	RunE:  historyClearCommand,
}

var (
	historyLimitFlag  int
	historyConfigFlag string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum entries to list")
	historyCmd.PersistentFlags().StringVar(&historyConfigFlag, "config", getEnvString("CURLKIT_CONFIG", ""), "Path to config file (env: CURLKIT_CONFIG)")
	historyCmd.AddCommand(historyClearCmd)
}

func openHistoryStore() (*history.Store, error) {
	fileConfig, err := config.LoadConfig(historyConfigFlag)
	if err != nil {
		return nil, err
	}
	return history.Open(historyPath(fileConfig))
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(historyLimitFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "no recorded requests")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, e := range entries {
		status := green(fmt.Sprint(e.Status))
		switch {
		case e.Status >= 500:
			status = red(fmt.Sprint(e.Status))
		case e.Status >= 400:
			status = yellow(fmt.Sprint(e.Status))
		}
		fmt.Fprintf(out, "%s  %s  %-7s %s  %dms\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			status, e.Method, e.URL, e.DurationMs)
	}

	return nil
}

func historyClearCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
	return nil
}
