package feed

import (
	"encoding/json"
	"fmt"
)

// channelEvent is the raw JSON envelope delivered by the feed service.
type channelEvent struct {
	Kind   string     `json:"kind"`
	TimeUS int64      `json:"time_us"`
	Post   *postEvent `json:"post,omitempty"`
}

// postEvent is a single channel post.
type postEvent struct {
	ChannelID int64     `json:"channel_id"`
	MessageID int64     `json:"message_id"`
	Caption   string    `json:"caption"`
	Media     *mediaRef `json:"media,omitempty"`
}

// mediaRef describes the post's attached media, if any.
type mediaRef struct {
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
}

// playableKinds are the media kinds the indexer accepts.
var playableKinds = map[string]struct{}{
	"video":      {},
	"video_note": {},
}

// playableRef returns the post's media reference when the attachment is
// playable, or "" otherwise.
func (p *postEvent) playableRef() string {
	if p.Media == nil {
		return ""
	}
	if _, ok := playableKinds[p.Media.Kind]; !ok {
		return ""
	}
	return p.Media.Ref
}

func parseEvent(data []byte) (*channelEvent, error) {
	var event channelEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Kind == "post" && event.Post == nil {
		return nil, fmt.Errorf("post event without post payload")
	}
	return &event, nil
}
