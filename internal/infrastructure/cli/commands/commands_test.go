package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnrubin/discord-logbot/internal/app"
	"github.com/bnrubin/discord-logbot/internal/domain"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"DISCORD_TOKEN", "LOGBOT_CONFIG", "LOGBOT_LISTEN_ADDR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("LOGBOT_DB_PATH", filepath.Join(dir, "logbot.db"))
	t.Setenv("LOGBOT_IMAGE_PATH", filepath.Join(dir, "images"))

	deps := &Deps{Options: app.Options{
		ConfigPath: filepath.Join(dir, "logbot.yaml"),
		EnvFile:    filepath.Join(dir, ".env"),
	}}
	t.Cleanup(func() { deps.Close() })
	return deps
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigPathAndValidate(t *testing.T) {
	deps := testDeps(t)

	out, err := execute(t, NewConfigCommand(deps), "path")
	require.NoError(t, err)
	assert.Equal(t, deps.Options.ConfigPath, strings.TrimSpace(out))

	out, err = execute(t, NewConfigCommand(deps), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, MsgConfigurationValid)
}

func TestConfigShowRedactsToken(t *testing.T) {
	deps := testDeps(t)
	t.Setenv("DISCORD_TOKEN", "super-secret")

	out, err := execute(t, NewConfigCommand(deps), "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "scope_channel: gbclyde")
}

func TestRecordsListAndShow(t *testing.T) {
	deps := testDeps(t)
	container, err := deps.Container(context.Background())
	require.NoError(t, err)

	created := time.Now().Add(-2 * time.Hour).UTC()
	_, err = container.Store.InsertIfAbsent(context.Background(), domain.InteractionRecord{
		CorrelationKey: "1100000000000000042",
		Prompt:         "castle at dusk",
		Author:         domain.Author{PlatformUserID: "55", DisplayName: "Ada"},
		Channel:        domain.Channel{ChannelName: "gbclyde"},
		ImageFile:      "a1b2.png",
		CreatedAt:      created,
		UpdatedAt:      created,
	})
	require.NoError(t, err)

	out, err := execute(t, NewRecordsCommand(deps), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "castle at dusk")
	assert.Contains(t, out, "2 hours ago")

	out, err = execute(t, NewRecordsCommand(deps), "search", "CASTLE")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1 (1 matches)")

	out, err = execute(t, NewRecordsCommand(deps), "show", "1100000000000000042")
	require.NoError(t, err)
	assert.Contains(t, out, `"filename": "a1b2.png"`)

	_, err = execute(t, NewRecordsCommand(deps), "show", "1100000000000000099")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordsListEmpty(t *testing.T) {
	out, err := execute(t, NewRecordsCommand(testDeps(t)), "list")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoRecords)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "logbot version")
}
