package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/compiler/render"
	"github.com/syssam/modelbuilder/internal/cli/ui"
	"github.com/syssam/modelbuilder/policy"
)

// NewGenerateCommand returns the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate typed models from a metadata source",
		Example: `  modelbuilder generate --snapshot org.msgpack -o model/model.go --namespace model
  modelbuilder generate --source webapi --url https://crm.contoso.com/api --split-files --out-directory model --messages
  modelbuilder generate --source sql --sql-driver postgres --sql-dsn "$MIRROR_DSN" --policy rules.yaml -o model.yaml --language yaml`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	addConfigFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	s, err := settings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(s.Verbose)
	defer func() { _ = log.Sync() }()

	cfg, err := s.Config(log)
	if err != nil {
		return err
	}
	// A bad invocation never reaches the source.
	if err := cfg.Validate(); err != nil {
		return err
	}
	var rules policy.Policy
	if s.Policy != "" {
		if rules, err = policy.Load(s.Policy); err != nil {
			return err
		}
	}
	out := cmd.OutOrStdout()
	if s.WriteTemplate {
		path, err := WriteTemplate(cfg)
		if err != nil {
			return err
		}
		ui.Success(out, "settings template written to %s", path)
	}

	src, err := openSource(s.Source, log)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := cmd.Context()
	ui.Step(out, "reading metadata from %s", src.name)
	org, err := newProvider(src, cfg, s.CacheDir, log).Load(ctx)
	if err != nil {
		return err
	}

	var opts []gen.ServicesOption
	if len(rules) > 0 {
		opts = append(opts, gen.WithFilter(policy.NewFilter(gen.NewFilter(cfg), rules, log)))
		log.Info("policy loaded", zap.String("path", s.Policy), zap.Int("rules", len(rules)))
	}
	res, err := gen.Generate(ctx, org, gen.NewServices(cfg, org, opts...))
	if err != nil {
		return err
	}
	m, err := render.Write(ctx, cfg, res, log)
	if err != nil {
		return fmt.Errorf("write %s output: %w", cfg.Language, err)
	}
	return ui.Summary(out, res.Stats, m, time.Since(start))
}
