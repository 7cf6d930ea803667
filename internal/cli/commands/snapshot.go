package commands

import (
	"github.com/spf13/cobra"

	"github.com/syssam/modelbuilder/internal/cli/ui"
	"github.com/syssam/modelbuilder/source/snapshot"
)

// NewSnapshotCommand returns the snapshot command.
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Save the metadata of a source to a snapshot file",
		Long: `Read the metadata of a source and save it to a file. The extension of
the file selects the format: .msgpack, .yaml or .json. The entity and
message filters limit what is read.`,
		Example: `  modelbuilder snapshot --source webapi --url https://crm.contoso.com/api --messages org.msgpack`,
		Args:    cobra.ExactArgs(1),
		RunE:    runSnapshot,
	}
	addConfigFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	s, err := settings(cmd)
	if err != nil {
		return err
	}
	if _, err := snapshot.FormatOf(args[0]); err != nil {
		return err
	}
	log := newLogger(s.Verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := s.Config(log)
	if err != nil {
		return err
	}
	src, err := openSource(s.Source, log)
	if err != nil {
		return err
	}
	defer src.Close()

	org, err := newProvider(src, cfg, "", log).Load(cmd.Context())
	if err != nil {
		return err
	}
	if err := snapshot.Write(args[0], org.Document()); err != nil {
		return err
	}
	ui.Success(cmd.OutOrStdout(), "%d entities, %d option sets and %d messages saved to %s",
		len(org.Entities), len(org.OptionSets()), org.Messages.Len(), args[0])
	return nil
}
