// Package repotest runs the same behavioural checks against every store
// implementation.
package repotest

import (
	"context"
	"testing"

	"github.com/geocoder89/carvalue/internal/domain/report"
	"github.com/geocoder89/carvalue/internal/domain/user"
	"github.com/geocoder89/carvalue/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// CreateRequest builds a valid report body around the given values.
func CreateRequest(mk, model string, price float64, year int, km, lon, lat float64) report.CreateReportRequest {
	return report.CreateReportRequest{
		Make:       mk,
		Model:      model,
		Price:      ptr(price),
		Year:       ptr(year),
		Kilometers: ptr(km),
		Longitude:  ptr(lon),
		Latitude:   ptr(lat),
	}
}

// RunUserStore expects newStore to return an empty store on every call.
func RunUserStore(t *testing.T, newStore func(t *testing.T) repo.UserStore) {
	t.Helper()

	t.Run("create assigns ids and no admin", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a, err := s.Create(ctx, "a@example.com", "salt.hash")
		require.NoError(t, err)
		b, err := s.Create(ctx, "b@example.com", "salt.hash")
		require.NoError(t, err)

		assert.NotZero(t, a.ID)
		assert.Greater(t, b.ID, a.ID)
		assert.False(t, a.Admin)
		assert.Equal(t, "a@example.com", a.Email)
		assert.Equal(t, "salt.hash", a.Password)
	})

	t.Run("find by id", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "a@example.com", "salt.hash")
		require.NoError(t, err)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created, *got)

		got, err = s.FindByID(ctx, 0)
		assert.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.FindByID(ctx, created.ID+100)
		assert.ErrorIs(t, err, user.ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("find by email returns every match", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first, err := s.Create(ctx, "dup@example.com", "x.y")
		require.NoError(t, err)
		_, err = s.Create(ctx, "other@example.com", "x.y")
		require.NoError(t, err)
		second, err := s.Create(ctx, "dup@example.com", "x.y")
		require.NoError(t, err)

		got, err := s.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)

		got, err = s.FindByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("update merges partial attributes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "a@example.com", "old.hash")
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, user.Attrs{Email: ptr("new@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Equal(t, "old.hash", updated.Password)
		assert.False(t, updated.Admin)

		updated, err = s.Update(ctx, created.ID, user.Attrs{Password: ptr("new.hash"), Admin: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Equal(t, "new.hash", updated.Password)
		assert.True(t, updated.Admin)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, *got)

		_, err = s.Update(ctx, created.ID+100, user.Attrs{Email: ptr("x@example.com")})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("remove returns the removed user", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, "a@example.com", "salt.hash")
		require.NoError(t, err)

		removed, err := s.Remove(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, removed)

		_, err = s.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, user.ErrNotFound)

		_, err = s.Remove(ctx, created.ID)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}

// RunReportStore expects newStore to return an empty store on every call.
func RunReportStore(t *testing.T, newStore func(t *testing.T) repo.ReportStore) {
	t.Helper()

	owner := user.User{ID: 7, Email: "owner@example.com"}

	t.Run("create is unapproved and owned", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		r, err := s.Create(ctx, CreateRequest("Ford", "Focus", 9500, 2018, 60000, -3.7, 40.4), owner)
		require.NoError(t, err)

		assert.NotZero(t, r.ID)
		assert.False(t, r.Approved)
		assert.Equal(t, owner.ID, r.UserID)
		assert.Equal(t, "Ford", r.Make)
		assert.Equal(t, "Focus", r.Model)
		assert.InDelta(t, 9500, r.Price, 1e-9)
		assert.Equal(t, 2018, r.Year)
		assert.InDelta(t, 60000, r.Kilometers, 1e-9)
		assert.InDelta(t, -3.7, r.Longitude, 1e-9)
		assert.InDelta(t, 40.4, r.Latitude, 1e-9)
	})

	t.Run("change approval", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		r, err := s.Create(ctx, CreateRequest("Ford", "Focus", 9500, 2018, 60000, 0, 0), owner)
		require.NoError(t, err)

		approved, err := s.ChangeApproval(ctx, r.ID, true)
		require.NoError(t, err)
		assert.True(t, approved.Approved)
		assert.Equal(t, r.UserID, approved.UserID)

		revoked, err := s.ChangeApproval(ctx, r.ID, false)
		require.NoError(t, err)
		assert.False(t, revoked.Approved)

		_, err = s.ChangeApproval(ctx, r.ID+100, true)
		assert.ErrorIs(t, err, report.ErrNotFound)
	})

	t.Run("estimate ignores unapproved reports", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		q := report.EstimateParams{Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 10000}

		got, err := s.Estimate(ctx, q)
		require.NoError(t, err)
		assert.Nil(t, got)

		for _, price := range []float64{20000, 22000, 99999} {
			_, err := s.Create(ctx, CreateRequest("Toyota", "Corolla", price, 2020, 10000, 0, 0), owner)
			require.NoError(t, err)
		}
		// approve ids in creation order, leaving the 99999 one pending
		approveFirst(t, s, 2)

		got, err = s.Estimate(ctx, q)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 21000, *got, 1e-9)
	})

	t.Run("estimate applies the comparable window", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		reqs := []report.CreateReportRequest{
			CreateRequest("Toyota", "Corolla", 1000, 2020, 10000, 5, -5),   // on the box edge
			CreateRequest("Toyota", "Corolla", 2000, 2017, 10000, 0, 0),    // year edge
			CreateRequest("Toyota", "Corolla", 50000, 2024, 10000, 0, 0),   // year out
			CreateRequest("Toyota", "Corolla", 50000, 2020, 10000, 6, 0),   // longitude out
			CreateRequest("Toyota", "Camry", 50000, 2020, 10000, 0, 0),     // model
			CreateRequest("Honda", "Corolla", 50000, 2020, 10000, 0, 0),    // make
			CreateRequest("Toyota", "Corolla", 50000, 2020, 10000, 0, 5.5), // latitude out
		}
		for _, req := range reqs {
			_, err := s.Create(ctx, req, owner)
			require.NoError(t, err)
		}
		approveFirst(t, s, len(reqs))

		got, err := s.Estimate(ctx, report.EstimateParams{Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 10000})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 1500, *got, 1e-9)
	})

	t.Run("estimate averages the three farthest mileages", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, c := range []struct{ price, km float64 }{
			{1000, 10000}, {2000, 11000}, {3000, 30000}, {4000, 50000}, {5000, 100000},
		} {
			_, err := s.Create(ctx, CreateRequest("Toyota", "Corolla", c.price, 2020, c.km, 0, 0), owner)
			require.NoError(t, err)
		}
		approveFirst(t, s, 5)

		got, err := s.Estimate(ctx, report.EstimateParams{Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 10000})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 4000, *got, 1e-9)
	})

	t.Run("estimate breaks mileage ties by id", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, price := range []float64{100, 200, 300, 400} {
			_, err := s.Create(ctx, CreateRequest("Toyota", "Corolla", price, 2020, 20000, 0, 0), owner)
			require.NoError(t, err)
		}
		approveFirst(t, s, 4)

		got, err := s.Estimate(ctx, report.EstimateParams{Make: "Toyota", Model: "Corolla", Year: 2020, Kilometers: 10000})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 200, *got, 1e-9)
	})
}

// approveFirst relies on every store numbering a fresh table from 1.
func approveFirst(t *testing.T, s repo.ReportStore, n int) {
	t.Helper()

	for id := int64(1); id <= int64(n); id++ {
		_, err := s.ChangeApproval(context.Background(), id, true)
		require.NoError(t, err)
	}
}
