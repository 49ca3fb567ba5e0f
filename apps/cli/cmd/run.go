package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/curlkit/curlkit/packages/client"
	"github.com/curlkit/curlkit/packages/config"
	"github.com/curlkit/curlkit/packages/runfile"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the requests of a YAML runfile in order",
	Long: `Run the requests of a YAML runfile in order, sharing one cookie jar
across the whole sequence.

Examples:
  curlkit run smoke.yaml
  curlkit run smoke.yaml --base https://staging.example.com
  curlkit run smoke.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runCommand,
}

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

var (
	runBaseFlag    string
	runJarFlag     string
	runConfigFlag  string
	runWatchFlag   bool
	runBailFlag    bool
	runVerboseFlag bool
	runNoColorFlag bool
)

func init() {
	runCmd.Flags().StringVar(&runBaseFlag, "base", getEnvString("CURLKIT_BASE", ""), "Base URL overriding the runfile's (env: CURLKIT_BASE)")
	runCmd.Flags().StringVar(&runJarFlag, "jar", getEnvString("CURLKIT_JAR", ""), "Cookie jar: off, memory or a file path (env: CURLKIT_JAR)")
	runCmd.Flags().StringVar(&runConfigFlag, "config", getEnvString("CURLKIT_CONFIG", ""), "Path to config file (env: CURLKIT_CONFIG)")
	runCmd.Flags().BoolVarP(&runWatchFlag, "watch", "w", false, "Re-run when the runfile changes")
	runCmd.Flags().BoolVar(&runBailFlag, "bail", getEnvBool("CURLKIT_BAIL", false), "Stop on the first failed request (env: CURLKIT_BAIL)")
	runCmd.Flags().BoolVarP(&runVerboseFlag, "verbose", "v", false, "Trace requests and responses on stderr")
	runCmd.Flags().BoolVar(&runNoColorFlag, "no-color", getEnvBool("CURLKIT_NO_COLOR", false), "Disable colored output (env: CURLKIT_NO_COLOR)")
}

func runCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	fileConfig, err := config.LoadConfig(runConfigFlag)
	if err != nil {
		return err
	}
	if fileConfig.GetNoColor() || runNoColorFlag {
		color.NoColor = true
	}

	failed, err := runOnce(cmd, path, fileConfig)
	if err != nil {
		return err
	}

	if !runWatchFlag {
		if failed > 0 {
			exitWithError(cmd, fmt.Errorf("%d request(s) failed", failed), ExitHTTPError)
		}
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) && filepath.Clean(event.Name) == filepath.Clean(path) {
				// Debounce: reset timer on each event
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running...\n\n", event.Name)
					if _, err := runOnce(cmd, path, fileConfig); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

// runOnce loads the runfile and plays its requests through one client,
// returning how many failed.
func runOnce(cmd *cobra.Command, path string, fileConfig *config.Config) (int, error) {
	rf, err := runfile.Load(path)
	if err != nil {
		return 0, err
	}

	defaults := fileConfig.Options()
	if runBaseFlag != "" {
		defaults.Base = runBaseFlag
	}
	if rf.Base != "" && runBaseFlag == "" {
		defaults.Base = rf.Base
	}
	if runJarFlag != "" {
		defaults.Jar = runJarFlag
	}
	if runVerboseFlag {
		defaults.Verbose = client.BoolPtr(true)
	}
	// The runner inspects status codes itself.
	defaults.FailOnHTTPError = client.BoolPtr(false)

	c, err := client.New(client.WithDefaults(defaults))
	if err != nil {
		return 0, err
	}

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if rf.Name != "" {
		fmt.Fprintf(out, "%s\n\n", bold(rf.Name))
	}

	failed := 0
	for i := range rf.Requests {
		req := &rf.Requests[i]

		opts, err := rf.Options(req)
		if err != nil {
			return failed, err
		}
		opts.Base = "" // the client default carries the base

		began := time.Now()
		resp, err := c.Request(strings.ToUpper(req.Method), req.Path, opts)
		elapsed := time.Since(began)

		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "%s %s (%v)\n", red("FAIL"), req.Label(), err)
		case req.ExpectStatus != 0 && resp.StatusCode != req.ExpectStatus:
			failed++
			fmt.Fprintf(out, "%s %s expected %d, got %d (%s)\n",
				red("FAIL"), req.Label(), req.ExpectStatus, resp.StatusCode, elapsed.Round(time.Millisecond))
		case req.ExpectStatus == 0 && (resp.IsClientError() || resp.IsServerError()):
			failed++
			fmt.Fprintf(out, "%s %s %d (%s)\n",
				red("FAIL"), req.Label(), resp.StatusCode, elapsed.Round(time.Millisecond))
		default:
			fmt.Fprintf(out, "%s %s %d (%s)\n",
				green("PASS"), req.Label(), resp.StatusCode, elapsed.Round(time.Millisecond))
		}

		if runBailFlag && failed > 0 {
			break
		}
	}

	total := len(rf.Requests)
	fmt.Fprintf(out, "\n%d/%d passed\n", total-failed, total)

	return failed, nil
}
