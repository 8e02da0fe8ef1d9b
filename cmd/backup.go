/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/naija-emoji/apiserver/internal/backup"
	"github.com/naija-emoji/apiserver/internal/db"
	"github.com/naija-emoji/apiserver/internal/storage"
	"github.com/naija-emoji/apiserver/internal/store"
	"github.com/spf13/cobra"
)

var restoreKey string

// backupCmd represents the backup command.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore the emoji catalog through object storage",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every emoji to a new snapshot object",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newBackupService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		key, err := svc.Export(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Insert the emojis of a snapshot (the latest unless --key is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newBackupService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		key := restoreKey
		if key == "" {
			if key, err = svc.Latest(cmd.Context()); err != nil {
				return err
			}
		}
		count, err := svc.Restore(cmd.Context(), key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d emojis from %s\n", count, key)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshot keys, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := newBackupService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		keys, err := svc.Snapshots(cmd.Context())
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd, backupRestoreCmd, backupListCmd)

	backupRestoreCmd.Flags().StringVar(&restoreKey, "key", "", "snapshot object key to restore")
}

func newBackupService(cmd *cobra.Command) (*backup.Service, func(), error) {
	cfg, logger := setup()
	ctx := cmd.Context()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	objects, err := storage.Open(ctx, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	svc := backup.NewService(store.NewEmojiRepository(conn), objects, logger)
	return svc, func() { _ = conn.Close() }, nil
}
