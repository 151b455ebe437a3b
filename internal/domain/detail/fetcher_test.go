package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/honeycarbs/tenuretrack/internal/domain"
	"github.com/honeycarbs/tenuretrack/pkg/jrecin"
	"github.com/honeycarbs/tenuretrack/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPageClient struct {
	mock.Mock
}

func (m *mockPageClient) Fetch(ctx context.Context, s *jrecin.Session, url string) ([]byte, error) {
	args := m.Called(ctx, s, url)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

type mockDocumentStore struct {
	mock.Mock
}

func (m *mockDocumentStore) SaveDocument(ctx context.Context, doc domain.DetailDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func TestFetchPersistsBeforeReturning(t *testing.T) {
	ctx := context.Background()
	client := &mockPageClient{}
	store := &mockDocumentStore{}

	listing := domain.ListingReference{URL: "https://jrecin.jst.go.jp/seek/SeekJorDetail?id=D42", JobID: "D42"}
	want := domain.DetailDocument{JobID: "D42", SourceURL: listing.URL, Body: []byte("<html/>")}

	client.On("Fetch", ctx, (*jrecin.Session)(nil), listing.URL).Return([]byte("<html/>"), nil).Once()
	store.On("SaveDocument", ctx, want).Return(nil).Once()

	f, err := NewFetcher(client, store, logging.NewNop())
	require.NoError(t, err)

	doc, err := f.Fetch(ctx, nil, listing)
	require.NoError(t, err)
	assert.Equal(t, want, doc)

	client.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestFetchFailureSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	client := &mockPageClient{}
	store := &mockDocumentStore{}

	listing := domain.ListingReference{URL: "u", JobID: "D1"}
	client.On("Fetch", ctx, (*jrecin.Session)(nil), "u").Return(nil, errors.New("503")).Once()

	f, err := NewFetcher(client, store, logging.NewNop())
	require.NoError(t, err)

	_, err = f.Fetch(ctx, nil, listing)
	require.Error(t, err)

	client.AssertNumberOfCalls(t, "Fetch", 1)
	store.AssertNotCalled(t, "SaveDocument", mock.Anything, mock.Anything)
}

func TestFetchKeepsDocumentWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	client := &mockPageClient{}
	store := &mockDocumentStore{}

	listing := domain.ListingReference{URL: "u", JobID: "D1"}
	client.On("Fetch", ctx, (*jrecin.Session)(nil), "u").Return([]byte("x"), nil)
	store.On("SaveDocument", ctx, mock.Anything).Return(errors.New("read-only fs"))

	f, err := NewFetcher(client, store, nil)
	require.NoError(t, err)

	doc, err := f.Fetch(ctx, nil, listing)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), doc.Body)
}

func TestFetchRequiresJobID(t *testing.T) {
	f, err := NewFetcher(&mockPageClient{}, &mockDocumentStore{}, nil)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), nil, domain.ListingReference{URL: "u"})
	assert.Error(t, err)
}

func TestPauseUsesConfiguredDelay(t *testing.T) {
	var waited time.Duration
	f, err := NewFetcher(&mockPageClient{}, &mockDocumentStore{}, nil,
		WithDelay(1500*time.Millisecond),
		WithSleep(func(_ context.Context, d time.Duration) error {
			waited = d
			return nil
		}),
	)
	require.NoError(t, err)

	require.NoError(t, f.Pause(context.Background()))
	assert.Equal(t, 1500*time.Millisecond, waited)
}
