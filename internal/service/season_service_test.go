package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/glider-ops-api/internal/dto"
	"github.com/noah-isme/glider-ops-api/internal/models"
	appErrors "github.com/noah-isme/glider-ops-api/pkg/errors"
)

func newSeasonService(f *fixture) *SeasonService {
	return NewSeasonService(f.seasons, f.tx, nil, nil)
}

func TestSeasonServiceCreateActiveDeactivatesPrevious(t *testing.T) {
	f := newFixture()
	f.state.seasons[2024] = models.FieldSeason{Year: 2024, IsActive: true}
	svc := newSeasonService(f)

	season, err := svc.Create(context.Background(), dto.CreateSeasonRequest{Year: 2025, MakeActive: true})
	require.NoError(t, err)
	assert.True(t, season.IsActive)
	assert.False(t, f.state.seasons[2024].IsActive)

	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2025, active.Year)
	assert.Equal(t, 1, f.tx.begins)
}

func TestSeasonServiceCreateInactiveKeepsActive(t *testing.T) {
	f := newFixture()
	f.state.seasons[2024] = models.FieldSeason{Year: 2024, IsActive: true}
	svc := newSeasonService(f)

	_, err := svc.Create(context.Background(), dto.CreateSeasonRequest{Year: 2026})
	require.NoError(t, err)
	assert.True(t, f.state.seasons[2024].IsActive)
}

func TestSeasonServiceCreateRejectsDuplicateYear(t *testing.T) {
	f := newFixture()
	f.state.seasons[2025] = models.FieldSeason{Year: 2025, IsActive: true}
	svc := newSeasonService(f)

	_, err := svc.Create(context.Background(), dto.CreateSeasonRequest{Year: 2025, MakeActive: true})
	require.ErrorIs(t, err, appErrors.ErrConflict)
	assert.True(t, f.state.seasons[2025].IsActive)
}

func TestSeasonServiceCreateValidatesYear(t *testing.T) {
	svc := newSeasonService(newFixture())
	_, err := svc.Create(context.Background(), dto.CreateSeasonRequest{Year: 0})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

type uniqueViolationSeasonStore struct{ *seasonStoreStub }

func (s uniqueViolationSeasonStore) Create(ctx context.Context, season *models.FieldSeason) error {
	return &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"field_seasons_single_active\""}
}

func TestSeasonServiceCreateMapsUniqueViolationToConflict(t *testing.T) {
	f := newFixture()
	svc := NewSeasonService(uniqueViolationSeasonStore{f.seasons}, f.tx, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateSeasonRequest{Year: 2025, MakeActive: true})
	require.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSeasonServiceGetActive(t *testing.T) {
	f := newFixture()
	svc := newSeasonService(f)

	_, err := svc.GetActive(context.Background())
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	f.state.seasons[2024] = models.FieldSeason{Year: 2024, IsActive: true}
	f.state.seasons[2025] = models.FieldSeason{Year: 2025, IsActive: true}
	_, err = svc.GetActive(context.Background())
	require.ErrorIs(t, err, appErrors.ErrInvariantViolation)
}

func TestSeasonServiceGetAndList(t *testing.T) {
	f := newFixture()
	f.state.seasons[2023] = models.FieldSeason{Year: 2023}
	f.state.seasons[2025] = models.FieldSeason{Year: 2025}
	svc := newSeasonService(f)

	seasons, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, 2025, seasons[0].Year)

	_, err = svc.Get(context.Background(), 2030)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSeasonServiceActivate(t *testing.T) {
	f := newFixture()
	closedAt := *at(1, 0)
	f.state.seasons[2024] = models.FieldSeason{Year: 2024, ClosedAt: &closedAt}
	f.state.seasons[2025] = models.FieldSeason{Year: 2025, IsActive: true}
	f.state.seasons[2026] = models.FieldSeason{Year: 2026}
	svc := newSeasonService(f)

	season, err := svc.Activate(context.Background(), 2026)
	require.NoError(t, err)
	assert.True(t, season.IsActive)
	assert.False(t, f.state.seasons[2025].IsActive)

	_, err = svc.Activate(context.Background(), 2024)
	require.ErrorIs(t, err, appErrors.ErrSeasonAlreadyClosed)

	_, err = svc.Activate(context.Background(), 2030)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
