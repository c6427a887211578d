// Command echoserver runs the request echo service.
//
// Usage:
//
//	echoserver                      Serve on 0.0.0.0:5000 (same as "serve")
//	echoserver serve -c echo.yaml   Serve with a config file
//	echoserver migrate              Apply Postgres archive migrations
//	echoserver version              Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks/o3sink"
	_ "github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks/pgsink"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "echoserver",
		Short: "HTTP echo endpoint that logs every request it receives",
		Long: `echoserver answers GET / and POST / with {"message": "Hello from Flask!"}
and writes method, path, headers and body of each request to stdout.

Configuration comes from an optional YAML file, a .env file and
ECHOSERVER_* environment variables (ECHOSERVER_SERVER__PORT=8080).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("ECHOSERVER_CONFIG_FILE"), "path to a YAML config file")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}
