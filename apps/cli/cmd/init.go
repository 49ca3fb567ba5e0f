package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new curlkit project",
	Long: `Initialize a new curlkit project in the current directory.

This creates:
  - .curlkit.yaml  - Configuration file with request defaults
  - smoke.yaml     - Example runfile

Examples:
  curlkit init
  curlkit init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".curlkit.yaml")
	exampleFile := filepath.Join(cwd, "smoke.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	configContent := map[string]any{
		"base":            "http://localhost:3000",
		"timeout":         30,
		"followRedirects": true,
		"maxRedirects":    10,
		"jar":             "memory",
		"headers": map[string]string{
			"User-Agent": "curlkit/1.0",
		},
	}

	configYAML, _ := yaml.Marshal(configContent)
	if err := os.WriteFile(configFile, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	exampleContent := `name: smoke
requests:
  - name: health
    method: GET
    path: /health
    expectStatus: 200

  - name: create resource
    method: POST
    path: /resources
    type: json
    fields:
      - name=Test Resource
      - description=Created by curlkit
    expectStatus: 201

  - name: list resources
    method: GET
    path: /resources
    params:
      - page=1
    expectStatus: 200
`

	if err := os.WriteFile(exampleFile, []byte(exampleContent), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\ncurlkit project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'curlkit run smoke.yaml' to execute the example requests.\n")

	return nil
}
