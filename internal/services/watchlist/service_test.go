package watchlist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/interfaces"
	"github.com/ternarybob/fundscope/internal/models"
	badgerstore "github.com/ternarybob/fundscope/internal/storage/badger"
)

type priceGateway struct {
	interfaces.MarketGateway

	mu     sync.Mutex
	prices map[string]float64
	calls  []string
}

func (g *priceGateway) GetLatestClose(ctx context.Context, symbol string) (*float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, symbol)
	price, ok := g.prices[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return &price, nil
}

type suffixResolver struct{}

func (suffixResolver) Normalize(ctx context.Context, raw string) string {
	if strings.Contains(raw, ".") {
		return raw
	}
	return raw + ".JK"
}

func newTestService(t *testing.T) (*Service, interfaces.StorageManager, *priceGateway) {
	t.Helper()
	logger := arbor.NewLogger()

	storage, err := badgerstore.NewManager(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	gateway := &priceGateway{prices: map[string]float64{"BBCA.JK": 9875, "AAPL.US": 190.5}}
	service := NewService(storage.WatchlistStorage(), storage.UserStorage(), gateway, suffixResolver{}, logger)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return service, storage, gateway
}

func TestAdd(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	item, err := service.Add(ctx, "u1", "  bbca ", " long term ")
	require.NoError(t, err)
	assert.Equal(t, "BBCA", item.Ticker)
	assert.Equal(t, "long term", item.Note)
	assert.NotEmpty(t, item.ID)

	_, err = service.Add(ctx, "u1", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyTicker)
}

func TestDelete_OwnerOnly(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	item, err := service.Add(ctx, "u1", "BBCA", "")
	require.NoError(t, err)

	removed, err := service.Delete(ctx, "u2", item.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = service.Delete(ctx, "u1", "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = service.Delete(ctx, "u1", item.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	entries, err := service.ListWithPrices(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListWithPrices(t *testing.T) {
	service, _, gateway := newTestService(t)
	ctx := context.Background()

	_, err := service.Add(ctx, "u1", "BBCA", "")
	require.NoError(t, err)
	_, err = service.Add(ctx, "u1", "UNKNOWN", "")
	require.NoError(t, err)
	_, err = service.Add(ctx, "u1", "AAPL.US", "")
	require.NoError(t, err)
	_, err = service.Add(ctx, "u2", "BBCA", "")
	require.NoError(t, err)

	entries, err := service.ListWithPrices(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, "AAPL.US", entries[0].Ticker)
	assert.Equal(t, "UNKNOWN", entries[1].Ticker)
	assert.Equal(t, "BBCA", entries[2].Ticker)

	require.NotNil(t, entries[0].LastPrice)
	assert.Equal(t, 190.5, *entries[0].LastPrice)
	assert.Nil(t, entries[1].LastPrice)
	require.NotNil(t, entries[2].LastPrice)
	assert.Equal(t, 9875.0, *entries[2].LastPrice)

	assert.ElementsMatch(t, []string{"AAPL.US", "UNKNOWN.JK", "BBCA.JK"}, gateway.calls)
}

func TestListAll_IncludesUsernames(t *testing.T) {
	service, storage, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, storage.UserStorage().CreateUser(ctx, &models.User{
		ID: "u1", Username: "alice", Email: "alice@example.com",
	}))

	_, err := service.Add(ctx, "u1", "BBCA", "")
	require.NoError(t, err)
	_, err = service.Add(ctx, "ghost", "TLKM", "")
	require.NoError(t, err)

	entries, err := service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "TLKM", entries[0].Ticker)
	assert.Empty(t, entries[0].Username)
	assert.Equal(t, "BBCA", entries[1].Ticker)
	assert.Equal(t, "alice", entries[1].Username)
}
