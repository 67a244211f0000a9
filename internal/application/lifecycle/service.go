package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnrubin/discord-logbot/internal/domain"
	"github.com/bnrubin/discord-logbot/internal/ports"
)

// Service turns platform edit events into record store mutations.
type Service struct {
	Rules   domain.LifecycleRules
	Store   ports.RecordStore
	Fetcher ports.ImageFetcher
	Clock   ports.Clock
	Metrics ports.Metrics
	Logger  ports.Logger
}

// HandleEdit classifies one (before, after) pair and applies its side effects.
// The returned Outcome always carries the classification, even alongside an error,
// so the caller can log enough context to replay the event.
func (s *Service) HandleEdit(ctx context.Context, before, after domain.MessageSnapshot) (domain.Outcome, error) {
	if s.Store == nil || s.Fetcher == nil || s.Logger == nil {
		return domain.Outcome{}, errors.New("lifecycle.Service dependencies not satisfied")
	}

	class := Classify(s.Rules, before, after)
	outcome := domain.Outcome{Classification: class}

	var err error
	switch class {
	case domain.ClassFiltered:
		s.Logger.Debug("completion withheld by bot, skipping", map[string]interface{}{
			"message_id":  after.MessageID,
			"image_width": after.Embed.ImageWidth,
		})
	case domain.ClassComplete:
		outcome, err = s.complete(ctx, after)
	case domain.ClassRetract:
		outcome, err = s.retract(ctx, before)
	}

	s.recordEvent(class, err)
	return outcome, err
}

func (s *Service) complete(ctx context.Context, after domain.MessageSnapshot) (domain.Outcome, error) {
	outcome := domain.Outcome{Classification: domain.ClassComplete}

	if _, err := domain.ParseMessageID(after.MessageID); err != nil {
		return outcome, fmt.Errorf("invalid correlation key: %w", err)
	}

	now := s.now()
	record := buildRecord(after, now)

	filename, err := s.fetch(ctx, after.Embed.ImageURL)
	if err != nil {
		return outcome, fmt.Errorf("fetch image for %s: %w", after.MessageID, err)
	}
	record.ImageFile = filename

	start := time.Now()
	id, err := s.Store.InsertIfAbsent(ctx, record)
	switch {
	case errors.Is(err, domain.ErrConflict):
		s.observeStore("insert", "conflict", start)
		s.discard(filename)
		s.Logger.Info("record already present, treating as redelivery", map[string]interface{}{
			"message_id": record.CorrelationKey,
		})
		return outcome, nil
	case err != nil:
		s.observeStore("insert", "error", start)
		s.discard(filename)
		return outcome, fmt.Errorf("insert %s: %w: %w", record.CorrelationKey, domain.ErrStoreWrite, err)
	}
	s.observeStore("insert", "ok", start)

	record.ID = id
	outcome.Record = &record
	outcome.Applied = true
	s.Logger.Debug("added record", map[string]interface{}{
		"id":         id,
		"message_id": record.CorrelationKey,
		"filename":   filename,
	})
	return outcome, nil
}

func (s *Service) retract(ctx context.Context, before domain.MessageSnapshot) (domain.Outcome, error) {
	outcome := domain.Outcome{Classification: domain.ClassRetract}

	start := time.Now()
	updated, err := s.Store.SoftDeleteByCorrelationKey(ctx, before.MessageID, s.now())
	if err != nil {
		s.observeStore("soft_delete", "error", start)
		return outcome, fmt.Errorf("soft delete %s: %w: %w", before.MessageID, domain.ErrStoreWrite, err)
	}

	if !updated {
		s.observeStore("soft_delete", "miss", start)
		s.Logger.Debug("embed removed but no live record matched", map[string]interface{}{
			"message_id": before.MessageID,
		})
		return outcome, nil
	}

	s.observeStore("soft_delete", "ok", start)
	outcome.Applied = true
	s.Logger.Debug("embed deleted, record hidden", map[string]interface{}{
		"message_id": before.MessageID,
	})
	return outcome, nil
}

func (s *Service) fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	filename, err := s.Fetcher.Fetch(ctx, url)
	if s.Metrics != nil {
		status := "ok"
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			status = string(fetchErr.Kind)
		} else if err != nil {
			status = "error"
		}
		s.Metrics.RecordFetch(status, time.Since(start))
	}
	return filename, err
}

func (s *Service) discard(filename string) {
	remover, ok := s.Fetcher.(ports.ImageDiscarder)
	if !ok {
		return
	}
	if err := remover.Discard(filename); err != nil {
		s.Logger.Warn("could not remove orphaned image", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *Service) recordEvent(class domain.Classification, err error) {
	if s.Metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.Metrics.RecordEvent(class, status)
}

func (s *Service) observeStore(operation, status string, start time.Time) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.RecordStoreOperation(operation, status, time.Since(start))
}

func buildRecord(after domain.MessageSnapshot, now time.Time) domain.InteractionRecord {
	record := domain.InteractionRecord{
		CorrelationKey: after.MessageID,
		Prompt:         after.Embed.Description,
		Channel:        after.Channel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if meta := after.Interaction; meta != nil {
		record.Author = domain.Author{
			PlatformUserID: meta.UserID,
			GlobalName:     meta.UserGlobalName,
			DisplayName:    meta.UserDisplayName,
		}
	}
	return record
}
