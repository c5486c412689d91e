package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kemukujara/lolbackup/internal/app"
	"github.com/kemukujara/lolbackup/internal/domain"
)

var listFormat string

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backup archives, newest first",
		Long: `List the LoLBackup_*.zip archives in the backup folder, newest first.

The recovery archive is not listed.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listFormat, "format", "table", "output format (table, json, yaml)")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner := app.NewRunner(cfg, app.WithLogger(logger))
	if err := runner.EnsureBackupDir(); err != nil {
		return err
	}

	archives, err := runner.ListArchives()
	if err != nil {
		return err
	}

	return writeArchives(cmd.OutOrStdout(), cfg.BackupDir, archives, listFormat)
}

// writeArchives renders archives in the given format.
func writeArchives(w io.Writer, dir string, archives []domain.Archive, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(archives, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal archives: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(archives); err != nil {
			return fmt.Errorf("failed to marshal archives: %w", err)
		}
		return enc.Close()
	case "table", "":
		if len(archives) == 0 {
			_, err := fmt.Fprintf(w, "No backups found in %s\n", dir)
			return err
		}

		table := uitable.New()
		table.MaxColWidth = 80
		table.AddRow("NAME", "CREATED", "AGE", "SIZE")
		for _, a := range archives {
			table.AddRow(a.Name,
				a.CreatedAt.Format("2006-01-02 15:04:05"),
				humanize.Time(a.CreatedAt),
				humanize.Bytes(uint64(a.Size)),
			)
		}
		_, err := fmt.Fprintln(w, table)
		return err
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
