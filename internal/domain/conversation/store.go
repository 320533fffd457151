package conversation

import (
	"context"
	"time"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one utterance in a session.
type Turn struct {
	Role   Role      `json:"role"`
	Text   string    `json:"text"`
	Tokens int       `json:"tokens,omitempty"`
	At     time.Time `json:"at"`
}

// Store keeps per-session history in insertion order. Sessions are
// independent so concurrent requests never interleave.
type Store interface {
	Append(ctx context.Context, sessionID string, turns ...Turn) error
	History(ctx context.Context, sessionID string) ([]Turn, error)
	TrimToLast(ctx context.Context, sessionID string, n int) error
	Reset(ctx context.Context, sessionID string) error
}

// Window returns the most recent turns whose token counts fit in budget, in
// their original order. A non-positive budget keeps everything.
func Window(turns []Turn, budget int) []Turn {
	if budget <= 0 {
		return turns
	}
	used := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		if used+turns[i].Tokens > budget {
			break
		}
		used += turns[i].Tokens
		start = i
	}
	return turns[start:]
}
