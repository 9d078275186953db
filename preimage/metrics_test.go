package preimage

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	keccak "github.com/Giulio2002/keccak_preimage"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewCollector(reg)

	cfg := DefaultConfig()
	cfg.MaxSessions = 1
	cfg.IdleTimeout = 0
	r, err := NewRegistry(cfg, zerolog.Nop(), collector)
	require.NoError(t, err)

	id, err := r.Init()
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(collector.open))

	_, err = r.Init()
	require.ErrorIs(t, err, ErrTooManySessions)
	require.Equal(t, 1.0, testutil.ToFloat64(collector.rejected))

	require.NoError(t, r.Update(id, make([]byte, 2*keccak.Rate+1)))
	require.Equal(t, float64(2*keccak.Rate+1), testutil.ToFloat64(collector.bytes))
	require.Equal(t, 2.0, testutil.ToFloat64(collector.blocks))

	_, err = r.Final(id)
	require.NoError(t, err)
	require.Equal(t, 3.0, testutil.ToFloat64(collector.blocks))
	require.Equal(t, 1.0, testutil.ToFloat64(collector.opened))
	require.Equal(t, 1.0, testutil.ToFloat64(collector.finalized))
	require.Equal(t, 0.0, testutil.ToFloat64(collector.open))
	require.Zero(t, testutil.ToFloat64(collector.reaped))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 7, count)
}
