package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "logbot.db"))
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

func record(key, prompt string, created time.Time) domain.InteractionRecord {
	return domain.InteractionRecord{
		CorrelationKey: key,
		Prompt:         prompt,
		Author:         domain.Author{PlatformUserID: "55", GlobalName: "ada", DisplayName: "Ada"},
		Channel:        domain.Channel{GuildID: "77", GuildName: "Guild", ChannelName: "gbclyde"},
		ImageFile:      key + ".png",
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func query(substring string, page int) domain.SearchQuery {
	return domain.SearchQuery{Substring: substring, ScopeFilter: "gbclyde", Page: page, PageSize: 9}
}

func TestInsertIfAbsentRejectsDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.InsertIfAbsent(ctx, record("1", "castle at dusk", base))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.InsertIfAbsent(ctx, record("1", "castle at dusk", base))
	assert.ErrorIs(t, err, domain.ErrConflict)

	page, err := s.Search(ctx, query("", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestInsertAfterSoftDeleteCreatesNewLiveRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.InsertIfAbsent(ctx, record("1", "castle", base))
	require.NoError(t, err)
	ok, err := s.SoftDeleteByCorrelationKey(ctx, "1", base.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)

	second, err := s.InsertIfAbsent(ctx, record("1", "castle", base.Add(2*time.Minute)))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	found, err := s.FindByCorrelationKey(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, second, found.ID, "live record should win over the deleted one")
}

func TestSoftDeleteWithoutMatchLeavesStoreUnchanged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, record("1", "castle", base))
	require.NoError(t, err)

	ok, err := s.SoftDeleteByCorrelationKey(ctx, "404", base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	rec, err := s.FindByCorrelationKey(ctx, "1")
	require.NoError(t, err)
	assert.False(t, rec.Deleted)
	assert.Equal(t, base, rec.UpdatedAt)

	// A second retraction of the same key is also a no-op.
	ok, err = s.SoftDeleteByCorrelationKey(ctx, "1", base.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.SoftDeleteByCorrelationKey(ctx, "1", base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSearchRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, record("1", "castle at dusk", base))
	require.NoError(t, err)
	_, err = s.InsertIfAbsent(ctx, record("2", "forest at dawn", base.Add(time.Second)))
	require.NoError(t, err)

	page, err := s.Search(ctx, query("castle", 1))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "castle at dusk", page.Items[0].Prompt)
	assert.Equal(t, "1.png", page.Items[0].ImageFile)
	assert.Equal(t, domain.Author{PlatformUserID: "55", GlobalName: "ada", DisplayName: "Ada"}, page.Items[0].Author)
	assert.Equal(t, base, page.Items[0].CreatedAt)

	page, err = s.Search(ctx, query("castle", 2))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalCount)
}

func TestSearchPageFarPastEndIsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.InsertIfAbsent(ctx, record(fmt.Sprint(i), "castle", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	page, err := s.Search(ctx, query("", 1024819115206086202))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalCount)
}

func TestSearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, record("1", "A Castle at Dusk", base))
	require.NoError(t, err)
	_, err = s.InsertIfAbsent(ctx, record("2", "Große Straße", base.Add(time.Second)))
	require.NoError(t, err)
	_, err = s.InsertIfAbsent(ctx, record("3", "100% cotton", base.Add(2*time.Second)))
	require.NoError(t, err)

	tests := []struct {
		substring string
		want      int
	}{
		{substring: "CASTLE", want: 1},
		{substring: "strasse", want: 1},
		{substring: "%", want: 1},
		{substring: "_", want: 0},
		{substring: "", want: 3},
	}
	for _, tt := range tests {
		page, err := s.Search(ctx, query(tt.substring, 1))
		require.NoError(t, err)
		assert.Equal(t, tt.want, page.TotalCount, "substring %q", tt.substring)
	}
}

func TestSearchExcludesDeletedAndOutOfScope(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, record("1", "castle", base))
	require.NoError(t, err)
	other := record("2", "castle", base.Add(time.Second))
	other.Channel.ChannelName = "general"
	_, err = s.InsertIfAbsent(ctx, other)
	require.NoError(t, err)

	page, err := s.Search(ctx, query("", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	ok, err := s.SoftDeleteByCorrelationKey(ctx, "1", base.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	for _, substring := range []string{"", "castle", "cas"} {
		page, err := s.Search(ctx, query(substring, 1))
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount, "substring %q", substring)
		assert.Empty(t, page.Items)
	}

	rec, err := s.FindByCorrelationKey(ctx, "1")
	require.NoError(t, err)
	assert.True(t, rec.Deleted)
	assert.Equal(t, base, rec.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), rec.UpdatedAt)
	assert.Equal(t, "1.png", rec.ImageFile)
}

func TestSearchPaginationNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := s.InsertIfAbsent(ctx, record(fmt.Sprint(i), fmt.Sprintf("prompt %d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	first, err := s.Search(ctx, query("", 1))
	require.NoError(t, err)
	assert.Equal(t, 10, first.TotalCount)
	require.Len(t, first.Items, 9)
	assert.Equal(t, "9", first.Items[0].CorrelationKey)
	assert.Equal(t, "1", first.Items[8].CorrelationKey)

	second, err := s.Search(ctx, query("", 2))
	require.NoError(t, err)
	assert.Equal(t, 10, second.TotalCount)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "0", second.Items[0].CorrelationKey)

	first.PageSize = 9
	assert.Equal(t, 2, first.TotalPages())
}

func TestFindByCorrelationKeyNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.FindByCorrelationKey(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecentAndExport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.InsertIfAbsent(ctx, record(fmt.Sprint(i), "p", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}
	_, err := s.SoftDeleteByCorrelationKey(ctx, "0", base.Add(time.Hour))
	require.NoError(t, err)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].CorrelationKey)

	dest := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, s.ExportJSON(ctx, dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	assert.Equal(t, 3, lines, "export keeps deleted records for audit")
	assert.NoError(t, s.Ping(ctx))
}
