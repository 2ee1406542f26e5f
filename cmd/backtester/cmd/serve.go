package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Saransh-28/backtester/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the backtest engine over HTTP",
	Long: `Serve starts an HTTP API with a POST /api/v1/backtest endpoint taking
the full input arrays as JSON, plus /health and Prometheus /metrics.

Example:
  backtester serve --addr :8080`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Serving backtester API on %s\n", serveAddr)
	return api.NewServer().ListenAndServe(serveAddr)
}
