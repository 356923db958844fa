package cmd

import (
	"fmt"

	"github.com/mselser95/triarb-tracker/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tracker",
	Long: `Starts the tracker service, which will:
1. Connect to ETH_RPC_URL and the router at ROUTER_ADDRESS
2. Scan every triangle of TOKEN_LIST, then wait POLL_INTERVAL, forever
3. Report profitable paths to the console (or postgres) and /ws/opportunities
4. Serve /metrics, /health, /ready, /api/status and /api/triangles

Use --no-http to run the scan loop without the HTTP server.`,
	RunE: runTracker,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-http", false, "Do not start the HTTP server and websocket hub")
}

func runTracker(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	noHTTP, _ := cmd.Flags().GetBool("no-http")

	application, err := app.New(cfg, logger, &app.Options{
		DisableHTTP: noHTTP,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
