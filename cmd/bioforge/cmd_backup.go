package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bioforge/internal/export"
)

func newBackupCmd(a *app) *cobra.Command {
	var restore string
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write, list or restore JSON backups of the plan and logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case list:
				infos, err := a.exporter.List(cmd.Context(), export.BackupPrefix)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					fmt.Fprintln(out, "no backups")
				}
				for _, info := range infos {
					fmt.Fprintf(out, "%s\t%d bytes\n", info.Key, info.Size)
				}
				return nil
			case restore != "":
				bundle, err := a.exporter.Restore(cmd.Context(), restore)
				if err != nil {
					return err
				}
				if !a.svc.RestoreBundle(cmd.Context(), bundle) {
					return fmt.Errorf("backup %s holds no plan", restore)
				}
				fmt.Fprintf(out, "restored %s (exported %s)\n", restore, bundle.ExportedAt)
				return nil
			default:
				info, err := a.exporter.Backup(cmd.Context(), a.svc.State())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "backup written to %s\n", info.Key)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&restore, "restore", "", "restore the backup stored under this key")
	cmd.Flags().BoolVar(&list, "list", false, "list stored backups")
	return cmd
}
