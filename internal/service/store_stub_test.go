package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/glider-ops-api/internal/models"
	"github.com/noah-isme/glider-ops-api/internal/repository"
)

// storeState is an in-memory stand-in for the season, station and offload log tables.
type storeState struct {
	seasons   map[int]models.FieldSeason
	stations  map[string]models.StationRecord
	logs      []models.OffloadAttempt
	nextLogID int64

	failMarkClosed error
	failAssign     error
}

func newStoreState() *storeState {
	return &storeState{seasons: map[int]models.FieldSeason{}, stations: map[string]models.StationRecord{}}
}

func (s *storeState) clone() *storeState {
	out := &storeState{
		seasons:        make(map[int]models.FieldSeason, len(s.seasons)),
		stations:       make(map[string]models.StationRecord, len(s.stations)),
		logs:           append([]models.OffloadAttempt(nil), s.logs...),
		nextLogID:      s.nextLogID,
		failMarkClosed: s.failMarkClosed,
		failAssign:     s.failAssign,
	}
	for k, v := range s.seasons {
		out.seasons[k] = v
	}
	for k, v := range s.stations {
		out.stations[k] = v
	}
	return out
}

func (s *storeState) addStation(station models.StationRecord) {
	s.stations[station.StationID] = station
}

func (s *storeState) addLog(entry models.OffloadAttempt) {
	s.nextLogID++
	entry.ID = s.nextLogID
	s.logs = append(s.logs, entry)
}

func (s *storeState) closedYear(year int) bool {
	season, ok := s.seasons[year]
	return ok && season.IsClosed()
}

func (s *storeState) logInScope(entry models.OffloadAttempt, scope models.SeasonScope) bool {
	station, ok := s.stations[entry.StationID]
	if !ok || !inScope(station, scope) {
		return false
	}
	if entry.FieldSeasonYear == nil || (scope.Year != nil && *entry.FieldSeasonYear == *scope.Year) {
		return true
	}
	if scope.Year != nil && !scope.IncludeUnassigned {
		return false
	}
	return !s.closedYear(*entry.FieldSeasonYear)
}

func inScope(station models.StationRecord, scope models.SeasonScope) bool {
	if scope.Year == nil {
		return station.FieldSeasonYear == nil && !station.IsArchived
	}
	if station.FieldSeasonYear != nil {
		return *station.FieldSeasonYear == *scope.Year
	}
	return scope.IncludeUnassigned && !station.IsArchived
}

// txStub restores the previous state when the callback fails, mimicking a rollback.
type txStub struct {
	state   *storeState
	begins  int
	readers int
}

func (t *txStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.begins++
	snapshot := t.state.clone()
	if err := fn(ctx); err != nil {
		*t.state = *snapshot
		return err
	}
	return nil
}

func (t *txStub) WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.readers++
	return fn(ctx)
}

type seasonStoreStub struct{ state *storeState }

func (s *seasonStoreStub) List(ctx context.Context) ([]models.FieldSeason, error) {
	out := make([]models.FieldSeason, 0, len(s.state.seasons))
	for _, season := range s.state.seasons {
		out = append(out, season)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (s *seasonStoreStub) FindByYear(ctx context.Context, year int) (*models.FieldSeason, error) {
	season, ok := s.state.seasons[year]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &season, nil
}

func (s *seasonStoreStub) LockByYear(ctx context.Context, year int) (*models.FieldSeason, error) {
	return s.FindByYear(ctx, year)
}

func (s *seasonStoreStub) ListActive(ctx context.Context) ([]models.FieldSeason, error) {
	out := []models.FieldSeason{}
	for _, season := range s.state.seasons {
		if season.IsActive {
			out = append(out, season)
		}
	}
	return out, nil
}

func (s *seasonStoreStub) Create(ctx context.Context, season *models.FieldSeason) error {
	if _, ok := s.state.seasons[season.Year]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	season.CreatedAt = time.Now().UTC()
	season.UpdatedAt = season.CreatedAt
	s.state.seasons[season.Year] = *season
	return nil
}

func (s *seasonStoreStub) EnsureExists(ctx context.Context, year int) error {
	if _, ok := s.state.seasons[year]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.state.seasons[year] = models.FieldSeason{Year: year, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *seasonStoreStub) DeactivateAll(ctx context.Context) (int64, error) {
	var n int64
	for year, season := range s.state.seasons {
		if season.IsActive {
			season.IsActive = false
			s.state.seasons[year] = season
			n++
		}
	}
	return n, nil
}

func (s *seasonStoreStub) Activate(ctx context.Context, year int) error {
	season, ok := s.state.seasons[year]
	if !ok || season.IsClosed() {
		return sql.ErrNoRows
	}
	season.IsActive = true
	s.state.seasons[year] = season
	return nil
}

func (s *seasonStoreStub) MarkClosed(ctx context.Context, params repository.MarkClosedParams) error {
	if s.state.failMarkClosed != nil {
		return s.state.failMarkClosed
	}
	season, ok := s.state.seasons[params.Year]
	if !ok || season.IsClosed() {
		return sql.ErrNoRows
	}
	closedAt, closedBy, stats := params.ClosedAt, params.ClosedBy, params.Statistics
	season.IsActive = false
	season.ClosedAt = &closedAt
	season.ClosedBy = &closedBy
	season.SummaryStatistics = &stats
	s.state.seasons[params.Year] = season
	return nil
}

func (s *seasonStoreStub) ReplaceStatistics(ctx context.Context, year int, stats models.SeasonStatistics) error {
	season, ok := s.state.seasons[year]
	if !ok || !season.IsClosed() {
		return sql.ErrNoRows
	}
	season.SummaryStatistics = &stats
	s.state.seasons[year] = season
	return nil
}

type stationStoreStub struct{ state *storeState }

func (s *stationStoreStub) FindByID(ctx context.Context, stationID string) (*models.StationRecord, error) {
	station, ok := s.state.stations[stationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &station, nil
}

func (s *stationStoreStub) LockByID(ctx context.Context, stationID string) (*models.StationRecord, error) {
	return s.FindByID(ctx, stationID)
}

func (s *stationStoreStub) ListByScope(ctx context.Context, scope models.SeasonScope, forUpdate bool) ([]models.StationRecord, error) {
	out := []models.StationRecord{}
	for _, station := range s.state.stations {
		if inScope(station, scope) {
			out = append(out, station)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out, nil
}

func (s *stationStoreStub) Upsert(ctx context.Context, station *models.StationRecord) error {
	existing, ok := s.state.stations[station.StationID]
	if ok && existing.IsArchived {
		return sql.ErrNoRows
	}
	if ok {
		mission := existing.LastOperatingMission
		if station.LastOperatingMission != nil {
			mission = station.LastOperatingMission
		}
		existing.SerialNumber = station.SerialNumber
		existing.ModemAddress = station.ModemAddress
		existing.BottomDepthM = station.BottomDepthM
		existing.Latitude = station.Latitude
		existing.Longitude = station.Longitude
		existing.Waypoint = station.Waypoint
		existing.Notes = station.Notes
		existing.LastOperatingMission = mission
		s.state.stations[station.StationID] = existing
		return nil
	}
	s.state.stations[station.StationID] = *station
	return nil
}

func (s *stationStoreStub) SetDisplayStatusOverride(ctx context.Context, stationID string, override *string) error {
	station, ok := s.state.stations[stationID]
	if !ok || station.IsArchived {
		return sql.ErrNoRows
	}
	station.DisplayStatusOverride = override
	s.state.stations[stationID] = station
	return nil
}

func (s *stationStoreStub) UpdateOffloadCache(ctx context.Context, update repository.OffloadCacheUpdate) error {
	station, ok := s.state.stations[update.StationID]
	if !ok || station.IsArchived {
		return sql.ErrNoRows
	}
	ts := update.Timestamp
	station.LastOffloadTimestamp = &ts
	if update.WasOffloaded != nil {
		station.WasLastOffloadSuccessful = update.WasOffloaded
	}
	if update.MissionID != nil {
		station.LastOperatingMission = update.MissionID
	}
	s.state.stations[update.StationID] = station
	return nil
}

func (s *stationStoreStub) ArchiveScope(ctx context.Context, scope models.SeasonScope, year int, archivedAt time.Time) (int64, error) {
	var n int64
	for id, station := range s.state.stations {
		if station.IsArchived || !inScope(station, scope) {
			continue
		}
		y, at := year, archivedAt
		station.IsArchived = true
		station.ArchivedAt = &at
		station.FieldSeasonYear = &y
		s.state.stations[id] = station
		n++
	}
	return n, nil
}

type offloadLogStoreStub struct{ state *storeState }

func (s *offloadLogStoreStub) Create(ctx context.Context, attempt *models.OffloadAttempt) error {
	if attempt.LoggedAt.IsZero() {
		attempt.LoggedAt = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	}
	s.state.addLog(*attempt)
	attempt.ID = s.state.nextLogID
	return nil
}

func (s *offloadLogStoreStub) ListByStation(ctx context.Context, stationID string, scope models.SeasonScope) ([]models.OffloadAttempt, error) {
	out := []models.OffloadAttempt{}
	for _, entry := range s.state.logs {
		if entry.StationID == stationID && s.state.logInScope(entry, scope) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *offloadLogStoreStub) ListByScope(ctx context.Context, scope models.SeasonScope) ([]models.OffloadAttempt, error) {
	out := []models.OffloadAttempt{}
	for _, entry := range s.state.logs {
		if s.state.logInScope(entry, scope) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *offloadLogStoreStub) AssignSeason(ctx context.Context, year int) (int64, error) {
	if s.state.failAssign != nil {
		return 0, s.state.failAssign
	}
	var n int64
	for i, entry := range s.state.logs {
		station := s.state.stations[entry.StationID]
		if station.FieldSeasonYear == nil || *station.FieldSeasonYear != year {
			continue
		}
		if entry.FieldSeasonYear == nil || (*entry.FieldSeasonYear != year && !s.state.closedYear(*entry.FieldSeasonYear)) {
			y := year
			s.state.logs[i].FieldSeasonYear = &y
			n++
		}
	}
	return n, nil
}

// fixture wires every service over one shared in-memory state.
type fixture struct {
	state    *storeState
	tx       *txStub
	seasons  *seasonStoreStub
	stations *stationStoreStub
	logs     *offloadLogStoreStub
}

func newFixture() *fixture {
	state := newStoreState()
	return &fixture{
		state:    state,
		tx:       &txStub{state: state},
		seasons:  &seasonStoreStub{state: state},
		stations: &stationStoreStub{state: state},
		logs:     &offloadLogStoreStub{state: state},
	}
}

func (f *fixture) archiver(now time.Time) *SeasonArchiveService {
	return NewSeasonArchiveService(SeasonArchiveServiceParams{
		Seasons:  f.seasons,
		Stations: f.stations,
		Logs:     f.logs,
		Tx:       f.tx,
		Now:      func() time.Time { return now },
	})
}

func ptr[T any](v T) *T { return &v }

func at(day, hour int) *time.Time {
	ts := time.Date(2025, 6, day, hour, 0, 0, 0, time.UTC)
	return &ts
}
