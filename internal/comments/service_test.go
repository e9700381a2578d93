package comments_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coatcheck/coatcheck-service/internal/comments"
	"github.com/coatcheck/coatcheck-service/internal/domain"
	"github.com/coatcheck/coatcheck-service/internal/observability"
)

// --- mock store ---

type mockStore struct {
	mu       sync.Mutex
	byID     map[string]domain.Comment
	putErr   error
	queryErr error

	putCalls   int
	queryCalls int
	queries    []string

	thumbsUp   atomic.Int64
	thumbsDown atomic.Int64
}

func newMockStore() *mockStore {
	return &mockStore{byID: make(map[string]domain.Comment)}
}

func (m *mockStore) Put(_ context.Context, c domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.byID[c.ID] = c
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) QueryByGeohash(_ context.Context, gh string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	m.queries = append(m.queries, gh)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []domain.Comment
	for _, c := range m.byID {
		if c.Geohash == gh {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateVote(_ context.Context, id string, kind domain.VoteKind) (int64, error) {
	m.mu.Lock()
	_, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return 0, domain.ErrNotFound
	}
	if kind == domain.VoteDown {
		return m.thumbsDown.Add(1), nil
	}
	return m.thumbsUp.Add(1), nil
}

func newTestService(store domain.CommentStore) *comments.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return comments.NewService(store, logger, observability.NewMetricsForTesting())
}

// --- Save ---

func TestSave_PersistsCommentWithGeohash(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	id, err := svc.Save(context.Background(), "alice", "Great view!", 51.5074, -0.1278)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	saved, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.UserName)
	assert.Equal(t, "Great view!", saved.Description)
	assert.Equal(t, 51.5074, saved.Latitude)
	assert.Equal(t, -0.1278, saved.Longitude)
	assert.Equal(t, "gcpvj0", saved.Geohash)
	assert.Zero(t, saved.ThumbsUp)
	assert.Zero(t, saved.ThumbsDown)
}

func TestSave_TrimsUserNameAndDescription(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	id, err := svc.Save(context.Background(), "  bob  ", "  hi there  ", 10, 10)
	require.NoError(t, err)

	saved, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "bob", saved.UserName)
	assert.Equal(t, "hi there", saved.Description)
}

func TestSave_RoundsCoordinatesToSixDecimals(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	id, err := svc.Save(context.Background(), "bob", "hi", 51.50740000049, -0.12780000051)
	require.NoError(t, err)

	saved, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 51.5074, saved.Latitude)
	assert.Equal(t, -0.1278, saved.Longitude)
}

func TestSave_UniqueIDs(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	first, err := svc.Save(context.Background(), "bob", "one", 10, 10)
	require.NoError(t, err)
	second, err := svc.Save(context.Background(), "bob", "two", 10, 10)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSave_ValidationOrder(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	tests := []struct {
		name      string
		userName  string
		desc      string
		lat, lon  float64
		wantField string
	}{
		{"empty username", "", "text", 10, 10, "username"},
		{"whitespace username", "   ", "text", 10, 10, "username"},
		{"empty description", "bob", "", 10, 10, "description"},
		{"whitespace description", "bob", "  \t ", 10, 10, "description"},
		{"username checked before description", "", "", 10, 10, "username"},
		{"latitude out of range", "bob", "hi", 91, 0, "coordinates-range"},
		{"longitude out of range", "bob", "hi", 0, 181, "coordinates-range"},
		{"latitude below range", "bob", "hi", -90.001, 0, "coordinates-range"},
		{"longitude below range", "bob", "hi", 0, -180.001, "coordinates-range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tt.userName, tt.desc, tt.lat, tt.lon)
			var iie *domain.InvalidInputError
			require.ErrorAs(t, err, &iie)
			assert.Equal(t, tt.wantField, iie.Field)
		})
	}
	assert.Zero(t, store.putCalls, "no store call on validation failure")
}

func TestSave_NonFiniteCoordinates(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Save(context.Background(), "bob", "hi", math.NaN(), 0)
	var iie *domain.InvalidInputError
	require.ErrorAs(t, err, &iie)
	assert.Equal(t, "coordinates", iie.Field)

	_, err = svc.Save(context.Background(), "bob", "hi", 0, math.Inf(1))
	require.ErrorAs(t, err, &iie)
	assert.Equal(t, "coordinates", iie.Field)
}

func TestSave_RangeCheckedAfterRounding(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	// 90.0000004 rounds to 90.0, which is in range.
	_, err := svc.Save(context.Background(), "bob", "hi", 90.0000004, 0)
	require.NoError(t, err)
}

func TestSave_StoreFailure(t *testing.T) {
	store := newMockStore()
	store.putErr = domain.ErrStoreUnavailable
	svc := newTestService(store)

	_, err := svc.Save(context.Background(), "bob", "hi", 10, 10)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// --- Nearby ---

func TestNearby_RoundTripSameCell(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Save(context.Background(), "alice", "Great view!", 51.5074, -0.1278)
	require.NoError(t, err)

	// A point a few metres away falls in the same precision-6 cell.
	results, err := svc.Nearby(context.Background(), 51.5073, -0.1277)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].UserName)
	assert.Equal(t, "Great view!", results[0].Description)
}

func TestNearby_DistantPointSeesNothing(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Save(context.Background(), "alice", "Great view!", 51.5074, -0.1278)
	require.NoError(t, err)

	results, err := svc.Nearby(context.Background(), 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results, "empty cell is an empty slice, not nil")
}

func TestNearby_QueriesExactGeohash(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Nearby(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	require.Equal(t, []string{"gcpvj0"}, store.queries)
}

func TestNearby_InvalidCoordinates(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	_, err := svc.Nearby(context.Background(), 91, 0)
	var iie *domain.InvalidInputError
	require.ErrorAs(t, err, &iie)
	assert.Equal(t, "coordinates-range", iie.Field)
	assert.Zero(t, store.queryCalls)
}

// --- Rate ---

func TestRate_IncrementsSelectedCounter(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	id, err := svc.Save(context.Background(), "bob", "hi", 10, 10)
	require.NoError(t, err)

	count, err := svc.Rate(context.Background(), id, "up")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.Rate(context.Background(), id, "up")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = svc.Rate(context.Background(), id, "down")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "down counter is independent")
}

func TestRate_ValidatesKindBeforeID(t *testing.T) {
	svc := newTestService(newMockStore())

	_, err := svc.Rate(context.Background(), "", "sideways")
	var iie *domain.InvalidInputError
	require.ErrorAs(t, err, &iie)
	assert.Equal(t, "voteKind", iie.Field)
}

func TestRate_EmptyCommentID(t *testing.T) {
	svc := newTestService(newMockStore())

	_, err := svc.Rate(context.Background(), "  ", "up")
	var iie *domain.InvalidInputError
	require.ErrorAs(t, err, &iie)
	assert.Equal(t, "commentId", iie.Field)
}

func TestRate_UnknownComment(t *testing.T) {
	svc := newTestService(newMockStore())

	_, err := svc.Rate(context.Background(), "nonexistent-id", "up")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRate_ConcurrentVotesNeverLost(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store)

	id, err := svc.Save(context.Background(), "bob", "hi", 10, 10)
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rate(context.Background(), id, "up")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), store.thumbsUp.Load())
	assert.Zero(t, store.thumbsDown.Load(), "down counter untouched")
}
