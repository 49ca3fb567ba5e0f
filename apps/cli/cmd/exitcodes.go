package cmd

// Exit codes for the curlkit CLI
const (
	// ExitSuccess indicates the request completed with a non-error status
	ExitSuccess = 0

	// ExitHTTPError indicates the server answered with 4xx/5xx
	ExitHTTPError = 1

	// ExitRequestError indicates the request could not be built or sent
	ExitRequestError = 2

	// ExitConfigError indicates a configuration or runfile error
	ExitConfigError = 3

	// ExitNetworkError indicates a connection-level failure
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
