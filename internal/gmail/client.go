package gmail

import "context"

const (
	// DefaultMaxResults bounds a single list call when the caller gives no limit.
	DefaultMaxResults = 20
	// MaxPageSize is the largest page the messages.list endpoint serves.
	MaxPageSize = 500
)

// Client is the narrow read-only Gmail surface required by hourwatch.
type Client interface {
	List(ctx context.Context, q Query, maxResults int) ([]MessageID, error)
	Get(ctx context.Context, id MessageID) (Message, error)
}
