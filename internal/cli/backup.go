package cli

import (
	"github.com/spf13/cobra"
)

// NewBackupCmd creates the backup command.
func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the client settings into a new archive",
		Long: `Copy the client's Config and DATA/CFG directories into a new
LoLBackup_<timestamp>.zip archive in the backup folder.`,
		Args: cobra.NoArgs,
		RunE: runBackup,
	}

	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner := newRunner(cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// The notifier has already shown the outcome.
	if _, err := runner.RunBackup(cmd.Context()); err != nil {
		return errReported
	}
	return nil
}
