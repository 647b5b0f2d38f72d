package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwei/defolio/internal/domain"
)

type stubReader struct {
	name domain.Protocol
}

func (s *stubReader) Protocol() domain.Protocol { return s.name }
func (s *stubReader) Meta() domain.ProtocolMeta { return domain.ProtocolMeta{Name: string(s.name)} }
func (s *stubReader) ReadPositions(context.Context, string, domain.ChainID) ([]domain.PositionToken, error) {
	return nil, nil
}
func (s *stubReader) Markets(context.Context, domain.ChainID) ([]domain.MarketRate, error) {
	return nil, nil
}

func TestRegistryOrderAndLookup(t *testing.T) {
	a := &stubReader{name: domain.ProtocolAave}
	c := &stubReader{name: domain.ProtocolCompound}
	d := &stubReader{name: domain.ProtocolDolomite}

	reg := NewRegistry(a, c, d)

	assert.Equal(t, []domain.Protocol{
		domain.ProtocolAave,
		domain.ProtocolCompound,
		domain.ProtocolDolomite,
	}, reg.Protocols())

	got, err := reg.Get(domain.ProtocolCompound)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestRegistryUnknownProtocol(t *testing.T) {
	reg := NewRegistry(&stubReader{name: domain.ProtocolAave})

	_, err := reg.Get(domain.Protocol("maker"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistryDuplicateAndNil(t *testing.T) {
	first := &stubReader{name: domain.ProtocolAave}
	second := &stubReader{name: domain.ProtocolAave}

	reg := NewRegistry(nil, first, second)

	require.Len(t, reg.All(), 1)
	got, err := reg.Get(domain.ProtocolAave)
	require.NoError(t, err)
	assert.Same(t, first, got)
}
