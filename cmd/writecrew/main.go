// Command writecrew runs the multi-agent writing platform's orchestration
// core: serve exposes the §6.3 submission surface and the /metrics
// listener, route runs the Router alone for debugging, version prints the
// build version.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sirupsen/logrus"
)

// version is overridden at build time via -ldflags.
var version = "dev"

var (
	configPath string
	log        = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "writecrew",
	Short: "writecrew runs the multi-agent writing platform's orchestration core",
	Long: `writecrew routes writing requests to specialist workers, schedules their
dependent tasks as a DAG, and runs the hallucination/quality/deviation
guardrail pipeline over the result before it leaves the system.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults apply if omitted)")
	rootCmd.AddCommand(serveCmd, routeCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
