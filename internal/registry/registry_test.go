package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercatto/mercatto-payments/internal/adapters"
	"github.com/mercatto/mercatto-payments/internal/core/domain"
)

type stubAdapter struct {
	adapters.Unsupported
	name string
}

func (s stubAdapter) Name() string { return s.name }

func TestRegistry_Resolution(t *testing.T) {
	gateway := stubAdapter{name: "mercadopago"}
	payouts := stubAdapter{name: "atlas"}
	r := New("mercadopago", gateway, payouts)

	t.Run("default", func(t *testing.T) {
		adapter, err := r.Default()
		require.NoError(t, err)
		assert.Equal(t, "mercadopago", adapter.Name())
	})

	t.Run("empty id resolves to default", func(t *testing.T) {
		adapter, err := r.Get("")
		require.NoError(t, err)
		assert.Equal(t, "mercadopago", adapter.Name())
	})

	t.Run("named provider coexists with the default", func(t *testing.T) {
		adapter, err := r.Get("atlas")
		require.NoError(t, err)
		assert.Equal(t, "atlas", adapter.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := r.Get("stripe")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
		assert.Equal(t, domain.KindUnsupported, domain.KindOf(err))
	})
}

func TestRegistry_UnsupportedCapabilityBranches(t *testing.T) {
	r := New("atlas", stubAdapter{name: "atlas"})

	adapter, err := r.Get("atlas")
	require.NoError(t, err)

	_, err = adapter.CreatePixPayment(context.Background(), domain.PixPayment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapabilityNotSupported)
}
