package cmd

import "github.com/spf13/cobra"

var getCmd = &cobra.Command{
	Use:   "get <url> [name==value ...]",
	Short: "Send a GET request",
	Long: `Send a GET request.

Examples:
  # Plain GET
  curlkit get https://api.example.com/todos

  # Query parameters, in order
  curlkit get https://api.example.com/todos page==2 sort==created

  # Against a configured base URL
  curlkit get /todos --base https://api.example.com`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "GET", args)
	},
}

var headCmd = &cobra.Command{
	Use:   "head <url> [name==value ...]",
	Short: "Send a HEAD request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "HEAD", args)
	},
}

var postCmd = &cobra.Command{
	Use:   "post <url> [name=value ...]",
	Short: "Send a POST request",
	Long: `Send a POST request.

Body fields are name=value pairs, form-urlencoded by default. With
--json they encode as a JSON object in the given order. A value with a
leading @ uploads the named file as multipart/form-data.

Examples:
  # Form body
  curlkit post https://api.example.com/login user=alice pass=secret

  # JSON body
  curlkit post https://api.example.com/todos --json title="Buy milk" done=false

  # File upload
  curlkit post https://api.example.com/upload file=@report.pdf`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "POST", args)
	},
}

var putCmd = &cobra.Command{
	Use:   "put <url> [name=value ...]",
	Short: "Send a PUT request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "PUT", args)
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch <url> [name=value ...]",
	Short: "Send a PATCH request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "PATCH", args)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <url> [name=value ...]",
	Short: "Send a DELETE request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		executeRequest(cmd, "DELETE", args)
	},
}

func init() {
	for _, c := range []*cobra.Command{getCmd, headCmd, postCmd, putCmd, patchCmd, deleteCmd} {
		addRequestFlags(c)
	}
}
