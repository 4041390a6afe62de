package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"kinokod/internal/domain"
)

const (
	cursorServiceName  = "channel-feed"
	cursorSaveInterval = 5 * time.Second
	reconnectBackoff   = 5 * time.Second
	statsLogInterval   = 30 * time.Second
)

// Subscriber connects to the channel feed and hands posts to the indexer.
type Subscriber struct {
	url     string
	indexer *domain.Indexer
	cursors domain.CursorRepository
	logger  *slog.Logger
}

// NewSubscriber creates a new feed subscriber.
func NewSubscriber(feedURL string, indexer *domain.Indexer, cursors domain.CursorRepository, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		url:     feedURL,
		indexer: indexer,
		cursors: cursors,
		logger:  logger,
	}
}

// Start connects to the feed and processes events until the context is
// cancelled. It automatically reconnects on transient errors. Delivery is
// at-least-once: the cursor is saved periodically, so a crash replays recent
// posts and the indexer's overwrite-by-identity semantics absorb the
// duplicates.
func (s *Subscriber) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx); err != nil {
				s.logger.Error("feed connection error, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectBackoff):
					// backoff before reconnecting
				}
			}
		}
	}
}

func (s *Subscriber) buildURL(cursor int64) string {
	u, err := url.Parse(s.url)
	if err != nil {
		return s.url
	}
	q := u.Query()
	if cursor > 0 {
		q.Set("cursor", fmt.Sprintf("%d", cursor))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Subscriber) subscribe(ctx context.Context) error {
	cursor, err := s.cursors.GetCursor(ctx, cursorServiceName)
	if err != nil {
		s.logger.Warn("failed to load cursor, starting from live", "error", err)
	}

	wsURL := s.buildURL(cursor)
	s.logger.Info("connecting to feed", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial feed: %w", err)
	}
	defer conn.Close()

	s.logger.Info("connected to feed")

	lastCursorSave := time.Now()
	var latestCursor int64
	var eventsReceived, postsIndexed, postsSkipped int64
	lastStatsLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		event, err := parseEvent(message)
		if err != nil {
			s.logger.Error("failed to parse event", "error", err)
			continue
		}

		eventsReceived++
		latestCursor = event.TimeUS

		if event.Kind == "post" {
			if indexed, err := s.handlePost(ctx, event.Post); err != nil {
				s.logger.Error("failed to handle post", "error", err)
			} else if indexed {
				postsIndexed++
			} else {
				postsSkipped++
			}
		}

		if time.Since(lastStatsLog) >= statsLogInterval {
			s.logger.Info("feed stats",
				"events_received", eventsReceived,
				"posts_indexed", postsIndexed,
				"posts_skipped", postsSkipped,
			)
			lastStatsLog = time.Now()
		}

		if time.Since(lastCursorSave) >= cursorSaveInterval {
			if err := s.cursors.UpdateCursor(ctx, cursorServiceName, latestCursor); err != nil {
				s.logger.Error("failed to save cursor", "error", err)
			} else {
				lastCursorSave = time.Now()
			}
		}
	}
}

func (s *Subscriber) handlePost(ctx context.Context, post *postEvent) (indexed bool, err error) {
	raw := &domain.RawMediaPost{
		ChannelID: post.ChannelID,
		MessageID: post.MessageID,
		MediaRef:  post.playableRef(),
		Caption:   post.Caption,
	}

	result, err := s.indexer.Ingest(ctx, raw)
	if errors.Is(err, domain.ErrNotMedia) {
		s.logger.Debug("skipping post without playable media",
			"channel_id", post.ChannelID,
			"message_id", post.MessageID,
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if len(result.Codes) > 0 {
		s.logger.Info("indexed post",
			"channel_id", post.ChannelID,
			"message_id", post.MessageID,
			"codes", result.Codes,
			"collisions", result.Collisions,
		)
	}
	return true, nil
}
