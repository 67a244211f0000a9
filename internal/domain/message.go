package domain

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DiscordEpoch is the platform's snowflake epoch in milliseconds.
const DiscordEpoch int64 = 1420070400000

// MessageSnapshot is the flat view of a platform message the classifier inspects.
// The platform adapter fills it from whatever rich object the client library delivers.
type MessageSnapshot struct {
	MessageID   string
	AuthorID    string
	AuthorIsBot bool
	Embed       *Embed
	Interaction *InteractionMeta
	Channel     Channel
}

// Embed is the first embedded-content descriptor attached to a message.
type Embed struct {
	Title       string
	Description string
	ImageURL    string
	ImageWidth  int
}

// InteractionMeta describes the user interaction the bot message answers.
type InteractionMeta struct {
	UserID          string
	UserGlobalName  string
	UserDisplayName string
}

// HasEmbed reports whether the snapshot carries embedded content.
func (m MessageSnapshot) HasEmbed() bool {
	return m.Embed != nil
}

// ParseMessageID validates a platform message id and returns it as a snowflake.
func ParseMessageID(id string) (snowflake.ID, error) {
	if strings.TrimSpace(id) == "" {
		return 0, fmt.Errorf("message id is empty")
	}
	sf, err := snowflake.ParseString(id)
	if err != nil {
		return 0, fmt.Errorf("message id %q: %w", id, err)
	}
	return sf, nil
}

// MessageTime extracts the creation time encoded in a platform message id.
func MessageTime(id string) (time.Time, error) {
	sf, err := ParseMessageID(id)
	if err != nil {
		return time.Time{}, err
	}
	// Time() adds the package-wide snowflake.Epoch; swap it for the platform epoch
	// rather than mutating that global.
	ms := sf.Time() - snowflake.Epoch + DiscordEpoch
	return time.UnixMilli(ms).UTC(), nil
}

// ThumbnailName inserts ".thumb" before the extension: "a1b2.png" -> "a1b2.thumb.png".
func ThumbnailName(filename string) string {
	if filename == "" {
		return ""
	}
	ext := path.Ext(filename)
	return strings.TrimSuffix(filename, ext) + ".thumb" + ext
}
