/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/naija-emoji/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the naija-emoji API server",
	Long: `Starts the naija-emoji API server. Usage:

	naijaemoji server --port 8080
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := server.New(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Int("port", 8080, "port to listen on")
	serverCmd.Flags().Bool("auto-migrate", false, "apply pending migrations before serving")
	bindFlags(serverCmd.Flags(), map[string]string{
		"port":         "server_port",
		"auto-migrate": "db_auto_migrate",
	})
}
