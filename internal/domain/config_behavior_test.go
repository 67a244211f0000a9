package domain_test

import (
	"testing"
	"time"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

// TestConfig_ImageTimeout tests parsing of images.timeout
func TestConfig_ImageTimeout(t *testing.T) {
	tests := []struct {
		name      string
		timeout   string
		want      time.Duration
		wantError bool
	}{
		{name: "falls back to default when unset", timeout: "", want: domain.DefaultImageTimeout},
		{name: "parses duration", timeout: "5s", want: 5 * time.Second},
		{name: "rejects garbage", timeout: "soon", wantError: true},
		{name: "rejects zero", timeout: "0s", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Images: domain.ImageSettings{Timeout: tt.timeout}}
			got, err := cfg.ImageTimeout()
			if tt.wantError {
				if err == nil {
					t.Fatalf("ImageTimeout() expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImageTimeout() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ImageTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConfig_MaxImageBytes tests humanized size parsing
func TestConfig_MaxImageBytes(t *testing.T) {
	tests := []struct {
		name      string
		size      string
		want      int64
		wantError bool
	}{
		{name: "unset means unlimited", size: "", want: 0},
		{name: "decimal megabytes", size: "25MB", want: 25_000_000},
		{name: "binary kibibytes", size: "2KiB", want: 2048},
		{name: "invalid size", size: "lots", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Images: domain.ImageSettings{MaxSize: tt.size}}
			got, err := cfg.MaxImageBytes()
			if tt.wantError {
				if err == nil {
					t.Fatal("MaxImageBytes() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("MaxImageBytes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MaxImageBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfig_RulesAndRedaction(t *testing.T) {
	cfg := domain.Config{
		Discord:   domain.DiscordSettings{Token: "secret", ObservedBotID: "42"},
		Lifecycle: domain.LifecycleSettings{CompletionTitle: "Done!", PlaceholderWidth: 512},
	}

	rules := cfg.Rules()
	if rules.ObservedBotID != "42" || rules.CompletionTitle != "Done!" || rules.PlaceholderWidth != 512 {
		t.Fatalf("Rules() = %+v", rules)
	}

	redacted := cfg.Redacted()
	if redacted.Discord.Token == "secret" {
		t.Fatal("Redacted() leaked the token")
	}
	if cfg.Discord.Token != "secret" {
		t.Fatal("Redacted() modified the receiver")
	}
}

func TestSearchPage_TotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{total: 0, size: 9, want: 0},
		{total: 1, size: 9, want: 1},
		{total: 9, size: 9, want: 1},
		{total: 10, size: 9, want: 2},
		{total: 5, size: 0, want: 0},
	}
	for _, tt := range tests {
		page := domain.SearchPage{TotalCount: tt.total, PageSize: tt.size}
		if got := page.TotalPages(); got != tt.want {
			t.Errorf("TotalPages(total=%d,size=%d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}

	page := domain.SearchPage{TotalCount: 10, PageSize: 9, Page: 2}
	if !page.HasPrev() || page.HasNext() {
		t.Errorf("page 2 of 2: HasPrev=%v HasNext=%v", page.HasPrev(), page.HasNext())
	}
}

func TestThumbnailName(t *testing.T) {
	tests := map[string]string{
		"a1b2.png":  "a1b2.thumb.png",
		"a1b2.webp": "a1b2.thumb.webp",
		"noext":     "noext.thumb",
		"":          "",
	}
	for in, want := range tests {
		if got := domain.ThumbnailName(in); got != want {
			t.Errorf("ThumbnailName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMessageTime(t *testing.T) {
	got, err := domain.MessageTime("175928847299117063")
	if err != nil {
		t.Fatalf("MessageTime() error = %v", err)
	}
	want := time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MessageTime() = %v, want %v", got, want)
	}

	if _, err := domain.MessageTime("not-a-snowflake"); err == nil {
		t.Error("MessageTime() expected error for non-numeric id")
	}
	if _, err := domain.ParseMessageID("  "); err == nil {
		t.Error("ParseMessageID() expected error for blank id")
	}
}
