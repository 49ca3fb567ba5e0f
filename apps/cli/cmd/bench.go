package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/curlkit/curlkit/packages/bench"
	"github.com/curlkit/curlkit/packages/client"
	"github.com/curlkit/curlkit/packages/config"
)

var benchCmd = &cobra.Command{
	Use:   "bench <url>",
	Short: "Repeat a request and report latency statistics",
	Long: `Repeat a request and report latency percentiles.

Examples:
  curlkit bench https://api.example.com/health -n 200
  curlkit bench https://api.example.com/health -n 1000 -c 10
  curlkit bench https://api.example.com/health -n 500 --rps 50`,
	Args: cobra.ExactArgs(1),
	RunE: benchCommand,
}

var (
	benchRequestsFlag    int
	benchConcurrencyFlag int
	benchRPSFlag         float64
	benchMethodFlag      string
	benchConfigFlag      string
	benchBaseFlag        string
	benchNoColorFlag     bool
)

func init() {
	benchCmd.Flags().IntVarP(&benchRequestsFlag, "requests", "n", getEnvInt("CURLKIT_BENCH_N", 100), "Total number of requests (env: CURLKIT_BENCH_N)")
	benchCmd.Flags().IntVarP(&benchConcurrencyFlag, "concurrency", "c", 1, "Number of parallel workers")
	benchCmd.Flags().Float64Var(&benchRPSFlag, "rps", 0, "Cap the request rate (0 = unlimited)")
	benchCmd.Flags().StringVarP(&benchMethodFlag, "method", "X", "GET", "HTTP method to repeat")
	benchCmd.Flags().StringVar(&benchConfigFlag, "config", getEnvString("CURLKIT_CONFIG", ""), "Path to config file (env: CURLKIT_CONFIG)")
	benchCmd.Flags().StringVar(&benchBaseFlag, "base", getEnvString("CURLKIT_BASE", ""), "Base URL prefixed to the path (env: CURLKIT_BASE)")
	benchCmd.Flags().BoolVar(&benchNoColorFlag, "no-color", getEnvBool("CURLKIT_NO_COLOR", false), "Disable colored output (env: CURLKIT_NO_COLOR)")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(benchConfigFlag)
	if err != nil {
		return err
	}
	if fileConfig.GetNoColor() || benchNoColorFlag {
		color.NoColor = true
	}

	defaults := fileConfig.Options()
	if benchBaseFlag != "" {
		defaults.Base = benchBaseFlag
	}
	// 4xx/5xx responses surface as typed errors so the runner counts
	// them against the error total.
	defaults.FailOnHTTPError = client.BoolPtr(true)

	c, err := client.New(client.WithDefaults(defaults))
	if err != nil {
		return err
	}

	runner, err := bench.NewRunner(c, bench.Config{
		Method:      benchMethodFlag,
		Path:        args[0],
		Requests:    benchRequestsFlag,
		Concurrency: benchConcurrencyFlag,
		RPS:         benchRPSFlag,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt, stopping gracefully...")
		cancel()
	}()

	result, runErr := runner.Run(ctx)
	printBenchResult(cmd, result)

	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}

func printBenchResult(cmd *cobra.Command, result *bench.Result) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(out, "\n%s\n", bold("Summary"))
	fmt.Fprintf(out, "  requests  %d\n", result.Requests)
	fmt.Fprintf(out, "  success   %s\n", green(fmt.Sprint(result.Success)))
	if result.Errors > 0 {
		fmt.Fprintf(out, "  errors    %s\n", red(fmt.Sprint(result.Errors)))
	} else {
		fmt.Fprintf(out, "  errors    %d\n", result.Errors)
	}
	fmt.Fprintf(out, "  duration  %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  rps       %.1f\n", result.RPS)

	fmt.Fprintf(out, "\n%s\n", bold("Latency"))
	fmt.Fprintf(out, "  min   %s\n", result.Min.Round(time.Microsecond))
	fmt.Fprintf(out, "  mean  %s\n", result.Mean.Round(time.Microsecond))
	fmt.Fprintf(out, "  p50   %s\n", result.P50.Round(time.Microsecond))
	fmt.Fprintf(out, "  p95   %s\n", result.P95.Round(time.Microsecond))
	fmt.Fprintf(out, "  p99   %s\n", result.P99.Round(time.Microsecond))
	fmt.Fprintf(out, "  max   %s\n", result.Max.Round(time.Microsecond))
}
