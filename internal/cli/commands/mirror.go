package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/syssam/modelbuilder/internal/cli/ui"
	sqlsrc "github.com/syssam/modelbuilder/source/sql"
)

var (
	errMirrorDSN  = errors.New("--mirror-dsn is required")
	errSameMirror = errors.New("mirror and source are the same database")
)

// NewMirrorCommand returns the mirror command.
func NewMirrorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy the metadata of a source into a relational mirror",
		Long: `Read the metadata of a source and replace the content of a relational
mirror with it. The mirror tables are created when missing. The mirror
can then serve runs with --source sql.`,
		Example: `  modelbuilder mirror --snapshot org.msgpack --mirror-driver sqlite --mirror-dsn org.db`,
		Args:    cobra.NoArgs,
		RunE:    runMirror,
	}
	addConfigFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	cmd.Flags().String("mirror-driver", "sqlite", "database/sql driver of the target mirror")
	cmd.Flags().String("mirror-dsn", "", "data source name of the target mirror")
	cmd.Flags().String("mirror-prefix", sqlsrc.DefaultTablePrefix, "table name prefix of the target mirror")
	return cmd
}

func runMirror(cmd *cobra.Command, _ []string) error {
	s, err := settings(cmd)
	if err != nil {
		return err
	}
	driver, _ := cmd.Flags().GetString("mirror-driver")
	dsn, _ := cmd.Flags().GetString("mirror-dsn")
	prefix, _ := cmd.Flags().GetString("mirror-prefix")
	if dsn == "" {
		return errMirrorDSN
	}
	if s.Source.Kind == SourceSQL && s.Source.SQLDriver == driver && s.Source.SQLDSN == dsn && s.Source.SQLPrefix == prefix {
		return errSameMirror
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

	ctx := cmd.Context()
	org, err := newProvider(src, cfg, "", log).Load(ctx)
	if err != nil {
		return err
	}
	dst, err := sqlsrc.Open(driver, dsn, sqlsrc.WithTablePrefix(prefix), sqlsrc.WithLogger(log))
	if err != nil {
		return err
	}
	defer dst.Close()
	if err := dst.CreateSchema(ctx); err != nil {
		return err
	}
	if err := dst.Store(ctx, org.Document()); err != nil {
		return err
	}
	ui.Success(cmd.OutOrStdout(), "%d entities mirrored to %s (%s)", len(org.Entities), driver, dst.Stats())
	return nil
}
