package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

// NameResolver looks up display names the gateway does not embed in messages.
type NameResolver interface {
	GuildName(guildID string) string
	ChannelName(channelID string) string
}

// Snapshots converts a gateway update into the (before, after) pair the lifecycle
// manager classifies. A missing cached copy yields an empty before snapshot.
func Snapshots(update *discordgo.MessageUpdate, names NameResolver) (before, after domain.MessageSnapshot) {
	if update == nil || update.Message == nil {
		return before, after
	}

	after = snapshot(update.Message, names)
	if update.BeforeUpdate != nil {
		before = snapshot(update.BeforeUpdate, names)
	} else {
		before = domain.MessageSnapshot{MessageID: update.ID, Channel: after.Channel}
	}

	// Partial updates may omit the author.
	if update.Author == nil && update.BeforeUpdate != nil && update.BeforeUpdate.Author != nil {
		after.AuthorID = before.AuthorID
		after.AuthorIsBot = before.AuthorIsBot
	}
	if after.Interaction == nil && before.Interaction != nil {
		after.Interaction = before.Interaction
	}
	return before, after
}

func snapshot(msg *discordgo.Message, names NameResolver) domain.MessageSnapshot {
	snap := domain.MessageSnapshot{
		MessageID: msg.ID,
		Channel:   channel(msg, names),
	}
	if msg.Author != nil {
		snap.AuthorID = msg.Author.ID
		snap.AuthorIsBot = msg.Author.Bot
	}
	if len(msg.Embeds) > 0 && msg.Embeds[0] != nil {
		snap.Embed = embed(msg.Embeds[0])
	}
	if msg.Interaction != nil && msg.Interaction.User != nil {
		snap.Interaction = interaction(msg.Interaction)
	}
	return snap
}

func embed(e *discordgo.MessageEmbed) *domain.Embed {
	out := &domain.Embed{Title: e.Title, Description: e.Description}
	if e.Image != nil {
		out.ImageURL = e.Image.URL
		out.ImageWidth = e.Image.Width
	}
	return out
}

func interaction(mi *discordgo.MessageInteraction) *domain.InteractionMeta {
	user := mi.User
	return &domain.InteractionMeta{
		UserID:          user.ID,
		UserGlobalName:  user.GlobalName,
		UserDisplayName: displayName(user, mi.Member),
	}
}

// displayName mirrors the client's rule: guild nickname, then global name, then username.
func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func channel(msg *discordgo.Message, names NameResolver) domain.Channel {
	ch := domain.Channel{GuildID: msg.GuildID}
	if names != nil {
		if msg.GuildID != "" {
			ch.GuildName = names.GuildName(msg.GuildID)
		}
		ch.ChannelName = names.ChannelName(msg.ChannelID)
	}
	return ch
}

// stateResolver reads names from the session's state cache.
type stateResolver struct {
	state *discordgo.State
}

func (r stateResolver) GuildName(guildID string) string {
	if r.state == nil {
		return ""
	}
	g, err := r.state.Guild(guildID)
	if err != nil {
		return ""
	}
	return g.Name
}

func (r stateResolver) ChannelName(channelID string) string {
	if r.state == nil {
		return ""
	}
	c, err := r.state.Channel(channelID)
	if err != nil {
		return ""
	}
	return c.Name
}
