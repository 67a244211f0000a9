package domain

import "time"

// InteractionRecord is the persisted trace of one successful image generation.
type InteractionRecord struct {
	ID             string    `json:"id"`
	CorrelationKey string    `json:"message_id"`
	Prompt         string    `json:"prompt"`
	Author         Author    `json:"user"`
	Channel        Channel   `json:"channel"`
	ImageFile      string    `json:"filename"`
	CreatedAt      time.Time `json:"created"`
	UpdatedAt      time.Time `json:"updated"`
	Deleted        bool      `json:"deleted"`
}

// Author is a snapshot of the user who triggered the generation. It is never refreshed.
type Author struct {
	PlatformUserID string `json:"id"`
	GlobalName     string `json:"name"`
	DisplayName    string `json:"display"`
}

// Channel identifies the guild/channel scope the generation happened in.
type Channel struct {
	GuildID     string `json:"id"`
	GuildName   string `json:"server"`
	ChannelName string `json:"name"`
}
