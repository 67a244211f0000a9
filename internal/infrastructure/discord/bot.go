// Package discord adapts the Discord gateway to the lifecycle manager.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// EditHandler consumes message edit events. lifecycle.Service satisfies it.
type EditHandler interface {
	HandleEdit(ctx context.Context, before, after domain.MessageSnapshot) (domain.Outcome, error)
}

// Bot owns the gateway session.
type Bot struct {
	session *discordgo.Session
	handler EditHandler
	logger  ports.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// NewBot creates a session with message caching enabled so edits arrive with their
// previous version attached.
func NewBot(token string, cacheSize int, handler EditHandler, logger ports.Logger) (*Bot, error) {
	if token == "" {
		return nil, errors.New("discord token is empty")
	}
	if handler == nil || logger == nil {
		return nil, errors.New("discord.Bot dependencies not satisfied")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent
	session.StateEnabled = true
	if cacheSize <= 0 {
		cacheSize = domain.DefaultMessageCacheSize
	}
	session.State.MaxMessageCount = cacheSize

	b := &Bot{session: session, handler: handler, logger: logger, ctx: context.Background()}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageUpdate)
	return b, nil
}

// Run connects to the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	<-ctx.Done()

	b.logger.Info("closing discord gateway", nil)
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	fields := map[string]interface{}{"guilds": len(r.Guilds)}
	if r.User != nil {
		fields["user"] = r.User.String()
		fields["user_id"] = r.User.ID
	}
	b.logger.Info("logged in", fields)
}

func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	before, after := Snapshots(m, stateResolver{state: s.State})
	b.dispatch(before, after)
}

// dispatch runs one event through the handler. A failing event is logged and
// dropped; it never takes the session down.
func (b *Bot) dispatch(before, after domain.MessageSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("edit handler panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"message_id": after.MessageID,
			})
		}
	}()

	b.mu.RLock()
	ctx := b.ctx
	b.mu.RUnlock()

	outcome, err := b.handler.HandleEdit(ctx, before, after)
	if err == nil {
		return
	}

	fields := map[string]interface{}{
		"message_id":     after.MessageID,
		"classification": string(outcome.Classification),
	}
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		fields["url"] = fetchErr.URL
		fields["kind"] = string(fetchErr.Kind)
		if fetchErr.StatusCode != 0 {
			fields["status"] = fetchErr.StatusCode
		}
		fields["error"] = err.Error()
		b.logger.Warn("image download failed, event dropped", fields)
		return
	}
	b.logger.Error("edit event failed", err, fields)
}
