package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"

	"github.com/curlkit/curlkit/packages/client"
	"github.com/curlkit/curlkit/packages/config"
	"github.com/curlkit/curlkit/packages/history"
)

// Shared request flags. One command runs per invocation, so the verb
// commands can safely register the same variables.
var (
	headerFlags      []string
	paramFlags       []string
	jsonFlag         bool
	xmlFlag          bool
	authFlag         string
	authSchemeFlag   string
	proxyFlag        string
	timeoutFlag      int
	noRedirectsFlag  bool
	maxRedirectsFlag int
	jarFlag          string
	noFailFlag       bool
	verboseFlag      bool
	includeFlag      bool
	extractFlag      string
	schemaFlag       string
	recordFlag       bool
	configFlag       string
	baseFlag         string
	noColorFlag      bool
	overrideFlags    []string
)

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Request header as Name:Value (repeatable)")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Query parameter as name=value (repeatable, keeps order)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Encode body fields as JSON and accept JSON back")
	cmd.Flags().BoolVar(&xmlFlag, "xml", false, "Negotiate XML content")
	cmd.Flags().StringVarP(&authFlag, "auth", "u", getEnvString("CURLKIT_AUTH", ""), "Credentials as user:password (env: CURLKIT_AUTH)")
	cmd.Flags().StringVar(&authSchemeFlag, "auth-scheme", "", "Auth scheme: basic or digest (default basic)")
	cmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("CURLKIT_PROXY", ""), "Proxy URL (env: CURLKIT_PROXY)")
	cmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "Request timeout in seconds")
	cmd.Flags().BoolVar(&noRedirectsFlag, "no-redirects", false, "Do not follow redirects")
	cmd.Flags().IntVar(&maxRedirectsFlag, "max-redirects", 0, "Redirect limit")
	cmd.Flags().StringVar(&jarFlag, "jar", getEnvString("CURLKIT_JAR", ""), "Cookie jar: off, memory or a file path (env: CURLKIT_JAR)")
	cmd.Flags().BoolVar(&noFailFlag, "no-fail", false, "Treat 4xx/5xx as ordinary responses")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("CURLKIT_VERBOSE", false), "Trace the request and response on stderr (env: CURLKIT_VERBOSE)")
	cmd.Flags().BoolVarP(&includeFlag, "include", "i", false, "Include the status line and headers in the output")
	cmd.Flags().StringVar(&extractFlag, "extract", "", "Print only this gjson path of a JSON body")
	cmd.Flags().StringVar(&schemaFlag, "schema", "", "Validate the JSON body against this JSON Schema file")
	cmd.Flags().BoolVar(&recordFlag, "record", getEnvBool("CURLKIT_RECORD", false), "Record the call in the history database (env: CURLKIT_RECORD)")
	cmd.Flags().StringVar(&configFlag, "config", getEnvString("CURLKIT_CONFIG", ""), "Path to config file (env: CURLKIT_CONFIG)")
	cmd.Flags().StringVar(&baseFlag, "base", getEnvString("CURLKIT_BASE", ""), "Base URL prefixed to the path (env: CURLKIT_BASE)")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("CURLKIT_NO_COLOR", false), "Disable colored output (env: CURLKIT_NO_COLOR)")
	cmd.Flags().StringArrayVar(&overrideFlags, "override", nil, "Raw transport override as key=value (repeatable)")
}

// executeRequest is the shared body of every verb command. args[0] is
// the URL or path; the remainder are name==value query parameters or
// name=value body fields, a value with a leading @ uploading the named
// file.
func executeRequest(cmd *cobra.Command, method string, args []string) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		exitWithError(cmd, err, ExitConfigError)
	}
	if fileConfig.GetNoColor() || noColorFlag {
		color.NoColor = true
	}

	opts, err := buildOptions(args[1:])
	if err != nil {
		exitWithError(cmd, err, ExitUsageError)
	}

	c, err := client.New(client.WithDefaults(fileConfig.Options().Merge(opts)))
	if err != nil {
		exitWithError(cmd, err, ExitConfigError)
	}

	began := time.Now()
	resp, err := c.Request(method, args[0], nil)
	elapsed := time.Since(began)

	if recordFlag && resp != nil {
		recordHistory(cmd, fileConfig, method, args[0], resp.StatusCode, elapsed)
	}

	if resp != nil {
		renderResponse(cmd, resp)
	}

	if err != nil {
		exitWithError(cmd, err, exitCodeFor(err))
	}

	if schemaFlag != "" && resp != nil {
		if err := validateSchema(cmd, resp); err != nil {
			exitWithError(cmd, err, ExitHTTPError)
		}
	}
}

// buildOptions folds the flags and positional pairs into one option
// set. Flag-sourced values sit above the config file at merge time.
func buildOptions(pairs []string) (*client.Options, error) {
	opts := &client.Options{
		Base:    baseFlag,
		Timeout: timeoutFlag,
		Jar:     jarFlag,
	}

	for _, h := range headerFlags {
		name, value, found := strings.Cut(h, ":")
		if !found {
			return nil, fmt.Errorf("invalid header %q, expected Name:Value", h)
		}
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		opts.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	for _, p := range paramFlags {
		name, value, found := strings.Cut(p, "=")
		if !found {
			return nil, fmt.Errorf("invalid param %q, expected name=value", p)
		}
		opts.Query = append(opts.Query, client.Param{Key: name, Value: value})
	}

	for _, pair := range pairs {
		if name, value, ok := strings.Cut(pair, "=="); ok {
			opts.Query = append(opts.Query, client.Param{Key: name, Value: value})
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid item %q, expected name=value or name==value", pair)
		}
		opts.Fields = append(opts.Fields, client.Field{Name: name, Value: value})
	}

	switch {
	case jsonFlag && xmlFlag:
		return nil, fmt.Errorf("--json and --xml are mutually exclusive")
	case jsonFlag:
		opts.Type = client.TypeJSON
	case xmlFlag:
		opts.Type = client.TypeXML
	}

	if authFlag != "" {
		username, password, _ := strings.Cut(authFlag, ":")
		opts.Auth = &client.Auth{
			Username: username,
			Password: password,
			Scheme:   authSchemeFlag,
		}
	}

	if proxyFlag != "" {
		opts.Proxy = &client.Proxy{URL: proxyFlag}
	}

	if noRedirectsFlag {
		opts.FollowRedirects = client.BoolPtr(false)
	}
	if maxRedirectsFlag > 0 {
		opts.MaxRedirects = maxRedirectsFlag
	}
	if noFailFlag {
		opts.FailOnHTTPError = client.BoolPtr(false)
	}
	if verboseFlag {
		opts.Verbose = client.BoolPtr(true)
	}

	for _, o := range overrideFlags {
		key, value, found := strings.Cut(o, "=")
		if !found {
			return nil, fmt.Errorf("invalid override %q, expected key=value", o)
		}
		if opts.Overrides == nil {
			opts.Overrides = make(map[string]any)
		}
		opts.Overrides[key] = value
	}

	return opts, nil
}

func renderResponse(cmd *cobra.Command, resp *client.Response) {
	out := cmd.OutOrStdout()

	if extractFlag != "" {
		result := resp.JSON(extractFlag)
		if result.Exists() {
			fmt.Fprintln(out, result.String())
		}
		return
	}

	if includeFlag {
		statusColor := color.New(color.FgGreen).SprintFunc()
		if resp.IsClientError() {
			statusColor = color.New(color.FgYellow).SprintFunc()
		} else if resp.IsServerError() {
			statusColor = color.New(color.FgRed).SprintFunc()
		}
		fmt.Fprintln(out, statusColor(client.StatusMessage(resp.StatusCode)))

		cyan := color.New(color.FgCyan).SprintFunc()
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%s: %s\n", cyan(name), resp.Headers[name])
		}
		fmt.Fprintln(out)
	}

	if len(resp.Body) > 0 {
		fmt.Fprintln(out, resp.BodyString())
	}
}

func validateSchema(cmd *cobra.Command, resp *client.Response) error {
	schemaPath, err := filepath.Abs(schemaFlag)
	if err != nil {
		return fmt.Errorf("schema path: %w", err)
	}
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(schemaPath))
	documentLoader := gojsonschema.NewBytesLoader(resp.Body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		red := color.New(color.FgRed).SprintFunc()
		for _, desc := range result.Errors() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", red("schema:"), desc)
		}
		return fmt.Errorf("response body does not match schema %s", schemaFlag)
	}
	return nil
}

func recordHistory(cmd *cobra.Command, cfg *config.Config, method, url string, status int, elapsed time.Duration) {
	path := historyPath(cfg)
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot open history database: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(method, url, status, elapsed); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cannot record history: %v\n", err)
	}
}

func historyPath(cfg *config.Config) string {
	if path := getEnvString("CURLKIT_HISTORY_DB", ""); path != "" {
		return path
	}
	if cfg != nil && cfg.HistoryDB != "" {
		return cfg.HistoryDB
	}
	return ".curlkit_history.db"
}

// exitCodeFor maps the typed error taxonomy onto process exit codes.
func exitCodeFor(err error) int {
	var connErr *client.ConnectionError
	if errors.As(err, &connErr) {
		return ExitNetworkError
	}
	var redirectErr *client.TooManyRedirectsError
	if errors.As(err, &redirectErr) {
		return ExitNetworkError
	}
	var clientErr *client.ClientError
	if errors.As(err, &clientErr) {
		return ExitHTTPError
	}
	var serverErr *client.ServerError
	if errors.As(err, &serverErr) {
		return ExitHTTPError
	}
	return ExitRequestError
}

func exitWithError(cmd *cobra.Command, err error, code int) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", red("error:"), err)
	os.Exit(code)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
