package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChargingPointService(repo *stubPointRepo) *ChargingPointService {
	return NewChargingPointService(repo, sequentialIDs(), testClock, nil)
}

func validPointInput() ChargingPointInput {
	lat, lng := -27.1, -52.6
	return ChargingPointInput{
		Nome:         "Eletroposto Centro",
		Endereco:     "Av. Central, 10",
		Cidade:       "Chapecó",
		Latitude:     &lat,
		Longitude:    &lng,
		TipoConector: "CCS",
		Velocidade:   "Rápida",
		Potencia:     "50kW",
	}
}

func TestChargingPointService_Create(t *testing.T) {
	t.Parallel()

	t.Run("registers a charger attributed to the acting employee", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())

		point, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testLead,
			Input:     validPointInput(),
		})
		require.NoError(t, err)
		assert.Equal(t, testLead.ID, point.FuncionarioID)
		assert.True(t, point.Disponivel)
	})

	t.Run("validates required fields", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())

		_, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testCEO,
			Input:     ChargingPointInput{Nome: "Eletroposto"},
		})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "endereco")
		assert.Contains(t, vErr.FieldErrors, "latitude")
		assert.Contains(t, vErr.FieldErrors, "longitude")
		assert.NotContains(t, vErr.FieldErrors, "nome")
	})

	t.Run("rejects staff without catalog rights", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())

		_, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testMason,
			Input:     validPointInput(),
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestChargingPointService_Update(t *testing.T) {
	t.Parallel()

	t.Run("applies partial changes", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())
		point, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testCEO,
			Input:     validPointInput(),
		})
		require.NoError(t, err)

		unavailable := false
		updated, err := svc.Update(context.Background(), UpdateChargingPointParams{
			Principal: testCEO,
			PointID:   point.ID,
			Input: ChargingPointInput{
				Nome:       "Eletroposto Centro II",
				Disponivel: &unavailable,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Eletroposto Centro II", updated.Nome)
		assert.False(t, updated.Disponivel)
		assert.Equal(t, point.Endereco, updated.Endereco)
	})

	t.Run("reports missing chargers", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())

		_, err := svc.Update(context.Background(), UpdateChargingPointParams{
			Principal: testCEO,
			PointID:   "missing",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestChargingPointService_ReadsAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("reads are open to anyone", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())
		point, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testCEO,
			Input:     validPointInput(),
		})
		require.NoError(t, err)

		got, err := svc.Get(context.Background(), point.ID)
		require.NoError(t, err)
		assert.Equal(t, point.ID, got.ID)

		all, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("delete is capability gated", func(t *testing.T) {
		t.Parallel()
		svc := newChargingPointService(newStubPointRepo())
		point, err := svc.Create(context.Background(), CreateChargingPointParams{
			Principal: testCEO,
			Input:     validPointInput(),
		})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(context.Background(), testMason, point.ID), ErrUnauthorized)
		require.NoError(t, svc.Delete(context.Background(), testCEO, point.ID))
		assert.ErrorIs(t, svc.Delete(context.Background(), testCEO, point.ID), ErrNotFound)
	})
}
