package cmds

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/godbot/pkg/bot"
	"github.com/go-go-golems/godbot/pkg/memory"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupViper(t *testing.T, botConfig string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("bot-config", botConfig)
	viper.Set("preset", "god")
	viper.Set("max-live-turns", memory.DefaultMaxLiveTurns)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoadBotConfigFallsBackToPreset(t *testing.T) {
	setupViper(t, filepath.Join(t.TempDir(), "missing.json"))
	viper.Set("preset", "kirby")

	cfg, err := loadBotConfig()
	require.NoError(t, err)
	assert.Equal(t, "Kirby", cfg.Botname)
}

func TestSeedAddThenExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	setupViper(t, path)

	_, stderr, err := execute(t, NewSeedGroupCommand(), "add", "--author", "Alexis", "--prompt", "Hello?", "--response", "Hello, child.")
	require.NoError(t, err)
	assert.Contains(t, stderr, "God now has 4 seed turns")

	cfg, err := bot.LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Seed.Len())
	assert.Equal(t, "Hello, child.", cfg.Seed.Turns()[3].Text)

	stdout, _, err := execute(t, NewConfigGroupCommand(), "export")
	require.NoError(t, err)
	parsed, err := bot.ParseConfig([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, cfg.Seed.Turns(), parsed.Seed.Turns())
}

func rowValue(t *testing.T, row types.Row, field string) interface{} {
	t.Helper()
	v, ok := row.Get(field)
	require.True(t, ok, "missing field %s", field)
	return v
}

func TestConfigImportAndValidate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bot.json")
	setupViper(t, target)

	source := filepath.Join(dir, "kirby.yaml")
	require.NoError(t, bot.SaveConfigFile(source, bot.KirbyConfig()))

	_, _, err := execute(t, NewConfigGroupCommand(), "import", source)
	require.NoError(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"botname":"x"}`), 0o644))

	rows, failed := validateConfigFiles([]string{target, broken})
	require.Len(t, rows, 2)
	assert.Equal(t, 1, failed)

	assert.Equal(t, target, rowValue(t, rows[0], "file"))
	assert.Equal(t, true, rowValue(t, rows[0], "valid"))
	assert.Equal(t, "Kirby", rowValue(t, rows[0], "botname"))
	assert.Equal(t, 6, rowValue(t, rows[0], "seed_turns"))

	assert.Equal(t, broken, rowValue(t, rows[1], "file"))
	assert.Equal(t, false, rowValue(t, rows[1], "valid"))
	assert.Contains(t, rowValue(t, rows[1], "error"), "missing field context")
}

func TestConfigShow(t *testing.T) {
	setupViper(t, "")
	stdout, _, err := execute(t, NewConfigGroupCommand(), "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "God config.")
	assert.Contains(t, stdout, "Username: Some question\nGod:")
}

func TestPromptCommand(t *testing.T) {
	setupViper(t, "")
	stdout, _, err := execute(t, NewPromptCommand(), "--author", "Alice", "Who", "are", "you?")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Alice: Who are you?\nGod:\n")
}

func TestPresetRows(t *testing.T) {
	rows, err := presetRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "god", rowValue(t, rows[0], "preset"))
	assert.Equal(t, bot.DefaultBotname, rowValue(t, rows[0], "botname"))
	assert.Equal(t, 2, rowValue(t, rows[0], "seed_turns"))

	assert.Equal(t, "kirby", rowValue(t, rows[1], "preset"))
	assert.Equal(t, "Kirby", rowValue(t, rows[1], "botname"))
	assert.Equal(t, 6, rowValue(t, rows[1], "seed_turns"))
}

func TestGlazedCommandsRegister(t *testing.T) {
	root := &cobra.Command{Use: "godbot"}
	RegisterCommands(root)

	for _, path := range [][]string{{"presets"}, {"config", "validate"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.Flags().Lookup("output"), "%v must carry the glazed output flags", path)
	}
}

func TestNewIdentityBackends(t *testing.T) {
	setupViper(t, "")
	cfg := bot.DefaultConfig("God")

	viper.Set("backend", "ollama")
	identity, err := newIdentity(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, "God", identity.Botname())

	viper.Set("backend", "carrier-pigeon")
	_, err = newIdentity(cfg, true)
	assert.Error(t, err)

	// offline commands never reach the backend switch
	_, err = newIdentity(cfg, false)
	assert.NoError(t, err)
}

func TestSeedAddRequiresPromptAndResponse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.json")
	setupViper(t, path)

	_, _, err := execute(t, NewSeedGroupCommand(), "add", "--prompt", "Hello?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing may be saved without a response")
}
