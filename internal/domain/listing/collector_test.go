package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nextMarkerPagination = `<ul class="pagination"><li><a href="#">次へ</a></li></ul>`

type fakeSearchClient struct {
	pages        map[int][]byte
	failPages    map[int]error
	bootstrapErr error
	requested    []int
	bootstraps   int
}

func (f *fakeSearchClient) Bootstrap(_ context.Context, _ *jrecin.Session) ([]byte, error) {
	f.bootstraps++
	if f.bootstrapErr != nil {
		return nil, f.bootstrapErr
	}
	return []byte("<html>landing</html>"), nil
}

func (f *fakeSearchClient) Search(_ context.Context, _ *jrecin.Session, params jrecin.SearchParams) ([]byte, error) {
	f.requested = append(f.requested, params.Page)
	if err, ok := f.failPages[params.Page]; ok {
		return nil, err
	}
	body, ok := f.pages[params.Page]
	if !ok {
		return nil, &jrecin.StatusError{StatusCode: 404}
	}
	return body, nil
}

type fakeSnapshotStore struct {
	landing int
	raw     []int
	parsed  []domain.PageParseResult
}

func (f *fakeSnapshotStore) SaveLandingPage(_ context.Context, _ []byte) error {
	f.landing++
	return nil
}

func (f *fakeSnapshotStore) SaveSearchPage(_ context.Context, page int, _ []byte) error {
	f.raw = append(f.raw, page)
	return nil
}

func (f *fakeSnapshotStore) SaveParsedPage(_ context.Context, result domain.PageParseResult) error {
	f.parsed = append(f.parsed, result)
	return nil
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func newTestCollector(t *testing.T, client SearchClient, store SnapshotStore, sleeper *recordingSleeper) *Collector {
	t.Helper()
	c, err := NewCollector(client, newTestParser(t), store, logging.NewNop(), WithSleep(sleeper.sleep))
	require.NoError(t, err)
	return c
}

func TestCollectStopsWhenNoNextPage(t *testing.T) {
	client := &fakeSearchClient{pages: map[int][]byte{
		1: resultsPage(1, 5, nextMarkerPagination),
		2: resultsPage(6, 3, ""),
	}}
	store := &fakeSnapshotStore{}
	sleeper := &recordingSleeper{}

	res, err := newTestCollector(t, client, store, sleeper).Collect(context.Background(), CollectParams{
		Keywords: "経済学",
		MaxPages: 10,
	})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 8)
	assert.Equal(t, 2, res.Pages)
	assert.False(t, res.Partial)
	assert.Equal(t, []int{1, 2}, client.requested)
	assert.Equal(t, []time.Duration{defaultPageDelay}, sleeper.waits)

	assert.Len(t, store.parsed, 2)
	assert.Empty(t, store.raw)
	assert.Zero(t, store.landing)
}

func TestCollectHonorsMaxPages(t *testing.T) {
	client := &fakeSearchClient{pages: map[int][]byte{
		1: resultsPage(1, 2, nextMarkerPagination),
		2: resultsPage(3, 2, nextMarkerPagination),
		3: resultsPage(5, 2, nextMarkerPagination),
	}}
	store := &fakeSnapshotStore{}
	sleeper := &recordingSleeper{}

	res, err := newTestCollector(t, client, store, sleeper).Collect(context.Background(), CollectParams{
		MaxPages: 2,
		Debug:    true,
	})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 4)
	assert.Equal(t, []int{1, 2}, client.requested)
	assert.Len(t, sleeper.waits, 1)
	assert.Equal(t, 1, store.landing)
	assert.Equal(t, []int{1, 2}, store.raw)
}

func TestCollectPartialOnLaterFailure(t *testing.T) {
	client := &fakeSearchClient{
		pages: map[int][]byte{
			1: resultsPage(1, 3, nextMarkerPagination),
		},
		failPages: map[int]error{2: errors.New("connection reset")},
	}
	sleeper := &recordingSleeper{}

	res, err := newTestCollector(t, client, &fakeSnapshotStore{}, sleeper).Collect(context.Background(), CollectParams{MaxPages: 5})
	require.NoError(t, err)

	assert.True(t, res.Partial)
	assert.Len(t, res.Listings, 3)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, []int{1, 2}, client.requested)
}

func TestCollectBootstrapFailure(t *testing.T) {
	client := &fakeSearchClient{bootstrapErr: errors.New("dns failure")}

	_, err := newTestCollector(t, client, &fakeSnapshotStore{}, &recordingSleeper{}).Collect(context.Background(), CollectParams{MaxPages: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSessionBootstrap)
	assert.Empty(t, client.requested)
}

func TestCollectFirstPageFailureIsBootstrapFailure(t *testing.T) {
	client := &fakeSearchClient{failPages: map[int]error{1: errors.New("timeout")}}

	_, err := newTestCollector(t, client, &fakeSnapshotStore{}, &recordingSleeper{}).Collect(context.Background(), CollectParams{MaxPages: 3})
	assert.ErrorIs(t, err, domain.ErrSessionBootstrap)
}

func TestCollectRejectsZeroPages(t *testing.T) {
	client := &fakeSearchClient{}
	_, err := newTestCollector(t, client, &fakeSnapshotStore{}, &recordingSleeper{}).Collect(context.Background(), CollectParams{})
	assert.Error(t, err)
	assert.Zero(t, client.bootstraps)
}
