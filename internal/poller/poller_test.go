package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

type fakeLister struct {
	positions []domain.ProtocolPosition
	err       error
	calls     int
}

func (f *fakeLister) Positions(_ context.Context, _ string, _ domain.ChainID) ([]domain.ProtocolPosition, error) {
	f.calls++
	return f.positions, f.err
}

type fakeRecorder struct {
	snap      domain.Snapshot
	takeErr   bool
	takeCalls int
	pruned    int
}

func (f *fakeRecorder) Take(_ context.Context, wallet string, chain domain.ChainID) (domain.Snapshot, error) {
	f.takeCalls++
	if f.takeErr {
		return domain.Snapshot{}, assert.AnError
	}
	snap := f.snap
	snap.Wallet = wallet
	snap.ChainID = chain
	return snap, nil
}

func (f *fakeRecorder) Prune(_ context.Context, _ time.Duration) (int64, error) {
	f.pruned++
	return 3, nil
}

type fakeBus struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{messages: make(map[string][][]byte)}
}

func (f *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[channel] = append(f.messages[channel], payload)
	return nil
}

func (f *fakeBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBus) published(channel string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[channel]
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const testWallet = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func TestRefreshWalletPublishesSnapshotAndPositions(t *testing.T) {
	recorder := &fakeRecorder{
		snap: domain.Snapshot{
			ID:       "snap-1",
			TotalUSD: 250,
			Positions: []domain.ProtocolPosition{
				{Protocol: domain.ProtocolAave, BalanceUSD: 250},
			},
		},
	}
	bus := newFakeBus()

	p := New(Config{
		Wallets:  []string{testWallet},
		Chain:    domain.ChainArbitrum,
		Interval: time.Minute,
	}, &fakeLister{}, recorder, nil, bus, nil, testLogger())

	err := p.refreshWallet(context.Background(), testWallet)
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.takeCalls)
	require.Len(t, bus.published(channelSnapshots), 1)
	require.Len(t, bus.published(channelPositions), 1)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(bus.published(channelSnapshots)[0], &snap))
	assert.Equal(t, testWallet, snap.Wallet)
	assert.Equal(t, "snap-1", snap.ID)
}

func TestRefreshWalletSnapshotFailure(t *testing.T) {
	recorder := &fakeRecorder{takeErr: true}
	bus := newFakeBus()

	p := New(Config{
		Wallets: []string{testWallet},
		Chain:   domain.ChainArbitrum,
	}, &fakeLister{}, recorder, nil, bus, nil, testLogger())

	err := p.refreshWallet(context.Background(), testWallet)
	require.Error(t, err)
	assert.Empty(t, bus.published(channelSnapshots))
	assert.Empty(t, bus.published(channelPositions))
}

func TestRefreshWalletWithoutRecorder(t *testing.T) {
	lister := &fakeLister{
		positions: []domain.ProtocolPosition{
			{Protocol: domain.ProtocolCompound, BalanceUSD: 42},
		},
	}
	bus := newFakeBus()

	p := New(Config{
		Wallets: []string{testWallet},
		Chain:   domain.ChainArbitrum,
	}, lister, nil, nil, bus, nil, testLogger())

	err := p.refreshWallet(context.Background(), testWallet)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls)
	assert.Empty(t, bus.published(channelSnapshots))
	require.Len(t, bus.published(channelPositions), 1)
}

func TestMaybePruneRespectsInterval(t *testing.T) {
	recorder := &fakeRecorder{}

	p := New(Config{
		Wallets:   []string{testWallet},
		Chain:     domain.ChainArbitrum,
		Retention: 90 * 24 * time.Hour,
	}, &fakeLister{}, recorder, nil, newFakeBus(), nil, testLogger())

	p.maybePrune(context.Background())
	p.maybePrune(context.Background())

	assert.Equal(t, 1, recorder.pruned, "second prune within the interval should be skipped")
}

func TestRunRequiresWallets(t *testing.T) {
	p := New(Config{}, &fakeLister{}, nil, nil, newFakeBus(), nil, testLogger())
	err := p.Run(context.Background())
	require.Error(t, err)
}
