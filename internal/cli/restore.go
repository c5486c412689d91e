package cli

import (
	"github.com/spf13/cobra"

	"github.com/kemukujara/lolbackup/internal/domain"
)

var (
	restoreYes  bool
	restoreFile string
)

// NewRestoreCmd creates the restore command.
func NewRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore client settings from an archive",
		Long: `Restore the client settings from a backup archive.

The League of Legends client must be closed first; lolbackup offers to close it.
The current settings are saved to LoLRecoveryBackup.zip in the backup folder
before anything is overwritten. By default the latest archive is offered.

Without a terminal, restore only proceeds when --yes or --file answer the prompts.`,
		Args: cobra.NoArgs,
		RunE: runRestore,
	}

	cmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "close the client and restore the latest archive without asking")
	cmd.Flags().StringVarP(&restoreFile, "file", "f", "", "restore this archive instead of the latest one")

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner := newRunner(cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	prompter := newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), restoreYes, restoreFile)

	res := runner.RunRestore(cmd.Context(), prompter)
	if res.Outcome == domain.OutcomeFailed {
		return errReported
	}
	return nil
}
