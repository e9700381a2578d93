package domain

import "context"

// GeohashPrecision is the fixed geohash length used on both the write and
// read paths. Changing it without migrating existing records breaks
// proximity queries, because the store matches on the exact stored value.
const GeohashPrecision = 6

// VoteKind selects which counter a rate request increments.
type VoteKind string

const (
	VoteUp   VoteKind = "up"
	VoteDown VoteKind = "down"
)

// ParseVoteKind validates a wire-level vote type string.
func ParseVoteKind(s string) (VoteKind, error) {
	switch VoteKind(s) {
	case VoteUp, VoteDown:
		return VoteKind(s), nil
	default:
		return "", NewInvalidInput("voteKind")
	}
}

// Comment is a persisted comment record. Field names double as the DynamoDB
// attribute names and the wire JSON keys the frontend reads, so the tags use
// the table's PascalCase convention.
type Comment struct {
	ID          string  `json:"CommentId" dynamodbav:"CommentId"`
	UserName    string  `json:"UserName" dynamodbav:"UserName"`
	Description string  `json:"Description" dynamodbav:"Description"`
	Latitude    float64 `json:"Latitude" dynamodbav:"Latitude"`
	Longitude   float64 `json:"Longitude" dynamodbav:"Longitude"`
	Geohash     string  `json:"Geohash" dynamodbav:"Geohash"`
	ThumbsUp    int64   `json:"ThumbsUp" dynamodbav:"ThumbsUp"`
	ThumbsDown  int64   `json:"ThumbsDown" dynamodbav:"ThumbsDown"`
}

// CommentStore is the persistence interface for comments. All calls are
// blocking round-trips to the backing table; a call that cannot reach the
// table fails with ErrStoreUnavailable.
type CommentStore interface {
	// Put inserts a new comment keyed by ID. Duplicate IDs are not expected;
	// ID generation is collision-resistant rather than store-enforced.
	Put(ctx context.Context, c Comment) error

	// GetByID fetches one comment, or ErrNotFound.
	GetByID(ctx context.Context, id string) (Comment, error)

	// QueryByGeohash returns every comment whose stored geohash equals gh
	// exactly. Order is store-native and unspecified. An empty cell yields
	// an empty slice, not an error.
	QueryByGeohash(ctx context.Context, gh string) ([]Comment, error)

	// UpdateVote atomically adds +1 to the counter selected by kind on the
	// comment identified by id and returns the new counter value. Fails
	// with ErrNotFound if no such comment exists.
	UpdateVote(ctx context.Context, id string, kind VoteKind) (int64, error)
}
