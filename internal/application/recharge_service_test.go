package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRechargeService(repo *stubRechargeRepo) *RechargeService {
	return NewRechargeService(repo, sequentialIDs(), tickingClock(), nil)
}

func seedRecharges(t *testing.T, svc *RechargeService, principal Principal, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: principal,
			Local:     fmt.Sprintf("Eletroposto %d", i),
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow.Add(time.Duration(i) * time.Hour),
			Duracao:   30,
			Energia:   12.5,
			Custo:     18.9,
		})
		require.NoError(t, err)
	}
}

func TestRechargeService_Create(t *testing.T) {
	t.Parallel()

	t.Run("records a session for the acting customer", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		recharge, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCustomer,
			Local:     "Eletroposto Centro",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow,
			Duracao:   45,
			Energia:   20,
			Custo:     31.5,
		})
		require.NoError(t, err)
		assert.Equal(t, testCustomer.ID, recharge.UserID)
		assert.Equal(t, "Eletroposto Centro", recharge.Local)
	})

	t.Run("validates required fields", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		_, err := svc.Create(context.Background(), CreateRechargeParams{Principal: testCustomer})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.FieldErrors, "local")
		assert.Contains(t, vErr.FieldErrors, "endereco")
		assert.Contains(t, vErr.FieldErrors, "dataHora")
	})

	t.Run("rejects employees", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		_, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCEO,
			Local:     "Eletroposto Centro",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow,
		})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestRechargeService_List(t *testing.T) {
	t.Parallel()

	t.Run("pages most recent recordings first", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())
		seedRecharges(t, svc, testCustomer, 12)

		page, err := svc.List(context.Background(), ListRechargesParams{
			Principal: testCustomer,
			Limit:     5,
			Offset:    5,
		})
		require.NoError(t, err)

		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 5, page.Limit)
		assert.Equal(t, 5, page.Offset)
		require.Len(t, page.Recharges, 5)
		assert.Equal(t, "Eletroposto 6", page.Recharges[0].Local)
		assert.Equal(t, "Eletroposto 2", page.Recharges[4].Local)
	})

	t.Run("orders by recording time, not session time", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		_, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCustomer,
			Local:     "Sessão recente",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow,
		})
		require.NoError(t, err)

		// A session from last week, backfilled after the recent one.
		_, err = svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCustomer,
			Local:     "Sessão antiga",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow.Add(-7 * 24 * time.Hour),
		})
		require.NoError(t, err)

		page, err := svc.List(context.Background(), ListRechargesParams{Principal: testCustomer})
		require.NoError(t, err)
		require.Len(t, page.Recharges, 2)
		assert.Equal(t, "Sessão antiga", page.Recharges[0].Local)
		assert.Equal(t, "Sessão recente", page.Recharges[1].Local)
	})

	t.Run("defaults the page size", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())
		seedRecharges(t, svc, testCustomer, 3)

		page, err := svc.List(context.Background(), ListRechargesParams{Principal: testCustomer})
		require.NoError(t, err)
		assert.Equal(t, defaultRechargeLimit, page.Limit)
		assert.Len(t, page.Recharges, 3)
	})

	t.Run("filters by start date", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())
		seedRecharges(t, svc, testCustomer, 6)

		start := fixedNow.Add(4 * time.Hour)
		page, err := svc.List(context.Background(), ListRechargesParams{
			Principal: testCustomer,
			StartDate: &start,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		assert.Len(t, page.Recharges, 2)
	})

	t.Run("never exposes other customers' sessions", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())
		seedRecharges(t, svc, testCustomer, 2)
		seedRecharges(t, svc, Principal{ID: "user-2", Kind: KindCustomer}, 3)

		page, err := svc.List(context.Background(), ListRechargesParams{Principal: testCustomer})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Total)
		for _, recharge := range page.Recharges {
			assert.Equal(t, testCustomer.ID, recharge.UserID)
		}
	})
}

func TestRechargeService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("removes the caller's own session", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		recharge, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCustomer,
			Local:     "Eletroposto Centro",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow,
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), testCustomer, recharge.ID))
		err = svc.Delete(context.Background(), testCustomer, recharge.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("treats other customers' sessions as missing", func(t *testing.T) {
		t.Parallel()
		svc := newRechargeService(newStubRechargeRepo())

		recharge, err := svc.Create(context.Background(), CreateRechargeParams{
			Principal: testCustomer,
			Local:     "Eletroposto Centro",
			Endereco:  "Av. Central, 10",
			DataHora:  fixedNow,
		})
		require.NoError(t, err)

		err = svc.Delete(context.Background(), Principal{ID: "user-2", Kind: KindCustomer}, recharge.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
