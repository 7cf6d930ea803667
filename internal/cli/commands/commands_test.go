package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/compiler/gen"
	"github.com/syssam/modelbuilder/metadata"
	"github.com/syssam/modelbuilder/source/snapshot"
)

func label(s string) metadata.Label {
	return metadata.Label{LocalizedLabels: []metadata.LocalizedLabel{{Label: s, LanguageCode: 1033}}}
}

func attr(logical, schema string, typ metadata.AttributeType) *metadata.Attribute {
	return &metadata.Attribute{
		MetadataID:       uuid.New(),
		LogicalName:      logical,
		SchemaName:       schema,
		Type:             typ,
		IsValidForCreate: true,
		IsValidForRead:   true,
		IsValidForUpdate: true,
	}
}

// writeSnapshot saves an account and a contact to dir/org.msgpack.
func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	accountID := attr("accountid", "AccountId", metadata.TypeUniqueidentifier)
	accountID.IsPrimaryID = true
	industry := attr("industrycode", "IndustryCode", metadata.TypePicklist)
	industry.OptionSet = &metadata.OptionSet{
		MetadataID: uuid.New(),
		Name:       "account_industrycode",
		Type:       metadata.OptionSetPicklist,
		Options:    []*metadata.Option{{Value: 1, Label: label("Accounting")}},
	}
	contactID := attr("contactid", "ContactId", metadata.TypeUniqueidentifier)
	contactID.IsPrimaryID = true
	org := metadata.NewOrganization([]*metadata.Entity{
		{
			MetadataID:         uuid.New(),
			LogicalName:        "account",
			SchemaName:         "Account",
			PrimaryIDAttribute: "accountid",
			Attributes:         []*metadata.Attribute{accountID, attr("name", "Name", metadata.TypeString), industry},
		},
		{
			MetadataID:         uuid.New(),
			LogicalName:        "contact",
			SchemaName:         "Contact",
			PrimaryIDAttribute: "contactid",
			Attributes:         []*metadata.Attribute{contactID},
		},
	}, nil, metadata.NewMessages())
	org.LanguageCode = 1033

	path := filepath.Join(dir, "org.msgpack")
	require.NoError(t, snapshot.Write(path, org.Document()))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "modelbuilder", root.Use)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"generate", "snapshot", "mirror", "version"})
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "modelbuilder version: ")
	assert.Contains(t, out, "Git commit: unknown")
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addConfigFlags(fs)
	addSourceFlags(fs)
	fs.Bool("verbose", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := LoadSettings(flags(t), "")
		require.NoError(t, err)
		assert.Equal(t, gen.LanguageGo, s.Language)
		assert.Equal(t, gen.DefaultEntityFolder, s.EntityFolder)
		assert.Equal(t, SourceSnapshot, s.Source.Kind)
		assert.Equal(t, 4, s.Source.Retries)
	})

	t.Run("flags env and file", func(t *testing.T) {
		t.Setenv("MODELBUILDER_NAMESPACE", "contoso")
		t.Setenv("MODELBUILDER_SQL_DSN", "file:org.db")
		file := filepath.Join(t.TempDir(), "modelbuilder.yaml")
		require.NoError(t, os.WriteFile(file, []byte("entity-filter: account;contact\nmessages: true\nsource: sql\n"), 0o644))

		s, err := LoadSettings(flags(t, "--out", "model.go", "--workers", "3"), file)
		require.NoError(t, err)
		assert.Equal(t, "model.go", s.Out)
		assert.Equal(t, 3, s.Workers)
		assert.Equal(t, "contoso", s.Namespace)
		assert.Equal(t, "account;contact", s.EntityFilter)
		assert.True(t, s.Messages)
		assert.Equal(t, SourceSQL, s.Source.Kind)
		assert.Equal(t, "file:org.db", s.Source.SQLDSN)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadSettings(flags(t), filepath.Join(t.TempDir(), "none.yaml"))
		assert.ErrorContains(t, err, "read config file")
	})
}

func TestSettingsConfig(t *testing.T) {
	t.Run("options", func(t *testing.T) {
		s, err := LoadSettings(flags(t, "--split-files", "--out-directory", "model", "--message-filter", "new_*", "--legacy", "--language-id", "1036"), "")
		require.NoError(t, err)
		cfg, err := s.Config(zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.SplitFiles)
		assert.Equal(t, "model", cfg.OutDirectory)
		assert.True(t, cfg.GenerateMessages)
		assert.Equal(t, "new_*", cfg.MessageNamesFilter)
		assert.True(t, cfg.LegacyMode)
		assert.Equal(t, 1036, cfg.DefaultLanguageID)
	})

	t.Run("settings file overrides flags", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "settings.json")
		require.NoError(t, os.WriteFile(file, []byte(`{"namespace": "fromfile", "messageNamesFilter": "WhoAmI"}`), 0o644))
		s, err := LoadSettings(flags(t, "--namespace", "fromflag", "-o", "model.go", "--settings-file", file), "")
		require.NoError(t, err)
		cfg, err := s.Config(zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, "fromfile", cfg.Namespace)
		assert.Equal(t, "model.go", cfg.OutFile)
		assert.True(t, cfg.GenerateMessages, "a message filter turns messages on")
	})

	t.Run("settings file with template", func(t *testing.T) {
		s, err := LoadSettings(flags(t, "--settings-file", "x.yaml", "--write-settings-template"), "")
		require.NoError(t, err)
		_, err = s.Config(zap.NewNop())
		assert.ErrorIs(t, err, gen.ErrInvalidConfig)
	})

	t.Run("bad language", func(t *testing.T) {
		s, err := LoadSettings(flags(t, "--language", "cobol"), "")
		require.NoError(t, err)
		_, err = s.Config(zap.NewNop())
		assert.ErrorIs(t, err, gen.ErrInvalidConfig)
	})
}

func TestWriteTemplate(t *testing.T) {
	dir := t.TempDir()
	cfg, err := gen.NewConfig(gen.WithOutFile(filepath.Join(dir, "out", "model.go")), gen.WithNamespace("crm"))
	require.NoError(t, err)
	path, err := WriteTemplate(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", TemplateFile), path)

	// The template reads back as a settings file.
	back, err := gen.NewConfig()
	require.NoError(t, err)
	require.NoError(t, readSettingsFile(path, back))
	assert.Equal(t, "crm", back.Namespace)
	assert.Equal(t, cfg.OutFile, back.OutFile)
}

func TestOpenSource(t *testing.T) {
	tests := []struct {
		name string
		s    SourceSettings
		want string
	}{
		{"unknown", SourceSettings{Kind: "ldap"}, `unknown source "ldap"`},
		{"snapshot path", SourceSettings{Kind: SourceSnapshot}, "--snapshot is required"},
		{"sql dsn", SourceSettings{Kind: SourceSQL, SQLDriver: "sqlite"}, "--sql-dsn are required"},
		{"webapi url", SourceSettings{Kind: SourceWebAPI}, "--url is required"},
		{"webapi scheme", SourceSettings{Kind: SourceWebAPI, URL: "ftp://crm"}, "scheme must be http or https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := openSource(tt.s, zap.NewNop())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)

	t.Run("single go file", func(t *testing.T) {
		out := filepath.Join(dir, "go", "model.go")
		stdout, err := execute(t, "generate", "--snapshot", snap, "-o", out, "--namespace", "crm", "--write-settings-template")
		require.NoError(t, err)
		src, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(src), "package crm")
		assert.Contains(t, string(src), "Account")
		assert.FileExists(t, filepath.Join(dir, "go", TemplateFile))
		assert.Contains(t, stdout, "Entities")
		assert.Contains(t, stdout, "generated in")
	})

	t.Run("split yaml with policy", func(t *testing.T) {
		rules := filepath.Join(dir, "rules.yaml")
		require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - deny: kind == \"entity\" && entity == \"contact\"\n"), 0o644))
		out := filepath.Join(dir, "yaml")
		_, err := execute(t, "generate", "--snapshot", snap, "--language", "yaml", "--split-files", "--out-directory", out, "--policy", rules)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(out, gen.DefaultEntityFolder, "account.yaml"))
		assert.NoFileExists(t, filepath.Join(out, gen.DefaultEntityFolder, "contact.yaml"))
	})

	t.Run("cache", func(t *testing.T) {
		cache := filepath.Join(dir, "cache")
		out := filepath.Join(dir, "cached", "model.go")
		_, err := execute(t, "generate", "--snapshot", snap, "-o", out, "--cache-dir", cache)
		require.NoError(t, err)
		entries, err := os.ReadDir(cache)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("invalid config never opens the source", func(t *testing.T) {
		_, err := execute(t, "generate", "--snapshot", filepath.Join(dir, "missing.msgpack"), "--split-files", "--out-directory", dir, "-o", "model.go")
		require.ErrorIs(t, err, gen.ErrInvalidConfig)
	})

	t.Run("bad policy", func(t *testing.T) {
		rules := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - allow: entity +\n"), 0o644))
		_, err := execute(t, "generate", "--snapshot", snap, "-o", filepath.Join(dir, "x.go"), "--policy", rules)
		assert.ErrorContains(t, err, "rule 1")
	})
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)
	out := filepath.Join(dir, "filtered.yaml")

	stdout, err := execute(t, "snapshot", "--snapshot", snap, "--entity-filter", "contact", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 entities")

	doc, err := snapshot.Read(out)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 1)
	assert.Equal(t, "contact", doc.Entities[0].LogicalName)

	_, err = execute(t, "snapshot", "--snapshot", snap, filepath.Join(dir, "org.txt"))
	assert.ErrorContains(t, err, "unknown format")
}

func TestMirror(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshot(t, dir)
	db := filepath.Join(dir, "mirror.db")

	stdout, err := execute(t, "mirror", "--snapshot", snap, "--mirror-dsn", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 entities mirrored to sqlite")

	// The mirror serves a generation run.
	out := filepath.Join(dir, "model.go")
	_, err = execute(t, "generate", "--source", "sql", "--sql-dsn", db, "-o", out)
	require.NoError(t, err)
	assert.FileExists(t, out)

	_, err = execute(t, "mirror", "--source", "sql", "--sql-dsn", db, "--mirror-dsn", db)
	assert.ErrorIs(t, err, errSameMirror)
	_, err = execute(t, "mirror", "--snapshot", snap)
	assert.ErrorIs(t, err, errMirrorDSN)
}
