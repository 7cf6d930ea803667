package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/compiler/load"
	sqlsrc "github.com/syssam/modelbuilder/source/sql"
)

// TemplateFile is the name of the settings template written next to the
// generated output.
const TemplateFile = "modelbuilder.settings.yaml"

// Settings are the command line settings of a run. Every field is bound to
// the flag of the same name, to the MODELBUILDER_ environment variable and
// to the key of the same name in the config file.
type Settings struct {
	Verbose bool `mapstructure:"verbose"`

	Language          string `mapstructure:"language"`
	Namespace         string `mapstructure:"namespace"`
	Out               string `mapstructure:"out"`
	SplitFiles        bool   `mapstructure:"split-files"`
	OutDirectory      string `mapstructure:"out-directory"`
	EntityFolder      string `mapstructure:"entity-folder"`
	MessageFolder     string `mapstructure:"message-folder"`
	OptionSetFolder   string `mapstructure:"optionset-folder"`
	ServiceContext    string `mapstructure:"service-context"`
	GlobalOptionSets  bool   `mapstructure:"global-optionsets"`
	Messages          bool   `mapstructure:"messages"`
	Private           bool   `mapstructure:"private"`
	MessageFilter     string `mapstructure:"message-filter"`
	EntityFilter      string `mapstructure:"entity-filter"`
	MessageNamespace  string `mapstructure:"message-namespace"`
	Legacy            bool   `mapstructure:"legacy"`
	EmitVirtual       bool   `mapstructure:"emit-virtual-attributes"`
	EmitFields        bool   `mapstructure:"emit-fields-classes"`
	EmitTypeCode      bool   `mapstructure:"emit-entity-type-code"`
	SuppressNotify    bool   `mapstructure:"suppress-notify"`
	SuppressGenerated bool   `mapstructure:"suppress-generated-code"`
	LanguageID        int    `mapstructure:"language-id"`
	Workers           int    `mapstructure:"workers"`

	SettingsFile  string `mapstructure:"settings-file"`
	WriteTemplate bool   `mapstructure:"write-settings-template"`
	Policy        string `mapstructure:"policy"`
	CacheDir      string `mapstructure:"cache-dir"`

	Source SourceSettings `mapstructure:",squash"`
}

// SourceSettings select and configure the metadata source.
type SourceSettings struct {
	Kind      string `mapstructure:"source"`
	Snapshot  string `mapstructure:"snapshot"`
	SQLDriver string `mapstructure:"sql-driver"`
	SQLDSN    string `mapstructure:"sql-dsn"`
	SQLPrefix string `mapstructure:"sql-prefix"`
	URL       string `mapstructure:"url"`
	Token     string `mapstructure:"token"`
	Retries   int    `mapstructure:"retries"`
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("language", gen.LanguageGo, "output language (go, yaml)")
	fs.String("namespace", "", "namespace (package name) of the generated code")
	fs.StringP("out", "o", "", "output file of a single file run")
	fs.Bool("split-files", false, "write one file per entity, message and option set")
	fs.String("out-directory", "", "output directory of a split run")
	fs.String("entity-folder", gen.DefaultEntityFolder, "folder of entity files in a split run")
	fs.String("message-folder", gen.DefaultMessageFolder, "folder of message files in a split run")
	fs.String("optionset-folder", gen.DefaultOptionSetFolder, "folder of option set files in a split run")
	fs.String("service-context", "", "name of the generated service context")
	fs.Bool("global-optionsets", false, "generate global option sets")
	fs.Bool("messages", false, "generate messages")
	fs.Bool("private", false, "include private messages")
	fs.String("message-filter", "", "';' separated message names, '*' is a wildcard")
	fs.String("entity-filter", "", "';' separated entity logical names")
	fs.String("message-namespace", "", "keep only message pairs on this namespace")
	fs.Bool("legacy", false, "generate the legacy declaration shape")
	fs.Bool("emit-virtual-attributes", false, "emit virtual formatted value attributes")
	fs.Bool("emit-fields-classes", false, "emit the nested Fields constants")
	fs.Bool("emit-entity-type-code", false, "emit the EntityTypeCode constant")
	fs.Bool("suppress-notify", false, "drop the change notification scaffolding")
	fs.Bool("suppress-generated-code", false, "drop the generated code annotation")
	fs.Int("language-id", 0, "label language of option names (0 asks the source)")
	fs.Int("workers", 0, "parallel file writers (0 uses GOMAXPROCS)")
	fs.String("settings-file", "", "JSON or YAML settings template overriding the flags")
	fs.Bool("write-settings-template", false, "write the effective settings next to the output")
	fs.String("policy", "", "YAML file of allow/deny rules")
	fs.String("cache-dir", "", "directory caching loaded metadata between runs")
}

func addSourceFlags(fs *pflag.FlagSet) {
	fs.String("source", "snapshot", "metadata source (snapshot, sql, webapi)")
	fs.String("snapshot", "", "snapshot file (.msgpack, .yaml, .json)")
	fs.String("sql-driver", "sqlite", "database/sql driver of the mirror (sqlite, postgres, mysql)")
	fs.String("sql-dsn", "", "data source name of the mirror")
	fs.String("sql-prefix", sqlsrc.DefaultTablePrefix, "table name prefix of the mirror")
	fs.String("url", "", "base URL of the metadata gateway")
	fs.String("token", "", "bearer token of the metadata gateway")
	fs.Int("retries", 4, "retries of a transient gateway failure")
}

// newViper binds fs to the environment and the config file. An explicit
// config file must exist; the default search may find nothing.
func newViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("MODELBUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("modelbuilder")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.modelbuilder")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// LoadSettings reads the settings bound to fs.
func LoadSettings(fs *pflag.FlagSet, configFile string) (*Settings, error) {
	v, err := newViper(fs, configFile)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// Config returns the generation config. A settings file overrides the
// flags. The config is not validated.
func (s *Settings) Config(log *zap.Logger) (*gen.Config, error) {
	opts := []gen.Option{
		gen.WithLanguage(s.Language),
		gen.WithNamespace(s.Namespace),
		gen.WithFolders(s.EntityFolder, s.MessageFolder, s.OptionSetFolder),
		gen.WithMessageNamespace(s.MessageNamespace),
		gen.WithEntityNames(s.EntityFilter),
		gen.WithEmit(s.EmitVirtual, s.EmitFields, s.EmitTypeCode),
		gen.WithDefaultLanguage(s.LanguageID),
		gen.WithWorkers(s.Workers),
		gen.WithLogger(log),
	}
	if s.Out != "" {
		opts = append(opts, gen.WithOutFile(s.Out))
	}
	if s.SplitFiles {
		opts = append(opts, gen.WithSplitFiles(s.OutDirectory))
	}
	if s.ServiceContext != "" {
		opts = append(opts, gen.WithServiceContext(s.ServiceContext))
	}
	if s.GlobalOptionSets {
		opts = append(opts, gen.WithGlobalOptionSets())
	}
	if s.Messages || s.MessageFilter != "" {
		opts = append(opts, gen.WithMessages(s.MessageFilter, s.Private))
	}
	if s.Legacy {
		opts = append(opts, gen.WithLegacyMode())
	}
	if s.SuppressNotify {
		opts = append(opts, gen.WithSuppressNotify())
	}
	if s.SuppressGenerated {
		opts = append(opts, gen.WithSuppressGeneratedCode())
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if s.SettingsFile == "" {
		return cfg, nil
	}
	if s.WriteTemplate {
		return nil, gen.NewConfigError("SettingsFile", s.SettingsFile, "cannot be combined with write-settings-template")
	}
	if err := readSettingsFile(s.SettingsFile, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readSettingsFile overlays the keys present in a settings template on cfg.
// JSON templates parse as YAML.
func readSettingsFile(path string, cfg *gen.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode settings file %s: %w", path, err)
	}
	return cfg.Apply()
}

// WriteTemplate writes cfg as a settings template into the output
// directory and returns its path.
func WriteTemplate(cfg *gen.Config) (string, error) {
	dir := cfg.OutDirectory
	if !cfg.SplitFiles {
		dir = filepath.Dir(cfg.OutFile)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode settings template: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, TemplateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write settings template: %w", err)
	}
	return path, nil
}

// loaderOptions maps the read related settings of cfg onto the loader.
func loaderOptions(cfg *gen.Config, log *zap.Logger) []load.Option {
	opts := []load.Option{
		load.WithLogger(log),
		load.WithLegacyMode(cfg.LegacyMode),
		load.WithGlobalOptionSets(cfg.GenerateGlobalOptionSets),
		load.WithLanguageCode(cfg.DefaultLanguageID),
	}
	if names := load.SplitList(cfg.EntityNamesFilter); len(names) > 0 {
		opts = append(opts, load.WithEntityNames(names...))
	}
	if cfg.MessagesEnabled() {
		opts = append(opts, load.WithMessages(true))
		if names := load.SplitList(cfg.MessageNamesFilter); len(names) > 0 {
			opts = append(opts, load.WithMessageNames(names...))
		}
	}
	return opts
}
