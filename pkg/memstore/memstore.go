// Package memstore is the in-memory store backend. It implements the same
// service interfaces as the Postgres backend, so the assignment algorithm
// and lifecycle rules behave identically in disconnected/local mode and in
// tests. Bulk relabels serialize on a per-scope mutex, mirroring the
// advisory lock the Postgres backend takes.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// Store holds all state behind one mutex; scope locks serialize assignment
// runs without blocking unrelated scopes for their full duration.
type Store struct {
	mu sync.RWMutex

	datasets map[string]*model.Dataset
	flights  map[string]*model.Flight
	targets  map[string]map[string]model.CategoryTarget // datasetID -> category
	settings map[string]*model.DatasetSettings
	runs     map[string][]model.AssignmentRun // datasetID -> runs

	scopeMu sync.Mutex
	scopes  map[string]*sync.Mutex
}

// New creates an empty store.
func New() *Store {
	return &Store{
		datasets: make(map[string]*model.Dataset),
		flights:  make(map[string]*model.Flight),
		targets:  make(map[string]map[string]model.CategoryTarget),
		settings: make(map[string]*model.DatasetSettings),
		runs:     make(map[string][]model.AssignmentRun),
		scopes:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) scopeLock(key string) *sync.Mutex {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()
	if mu, ok := s.scopes[key]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.scopes[key] = mu
	return mu
}

// CreateDataset registers a dataset.
func (s *Store) CreateDataset(ctx context.Context, dataset *model.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *dataset
	s.datasets[dataset.ID] = &copied
	return nil
}

// GetDataset returns a dataset or model.ErrDatasetNotFound.
func (s *Store) GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dataset, ok := s.datasets[datasetID]
	if !ok {
		return nil, model.ErrDatasetNotFound
	}
	copied := *dataset
	return &copied, nil
}

// DeleteDataset removes a dataset and cascades to its flights, targets and
// settings. Run records survive as audit trail.
func (s *Store) DeleteDataset(ctx context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[datasetID]; !ok {
		return model.ErrDatasetNotFound
	}
	delete(s.datasets, datasetID)
	delete(s.targets, datasetID)
	delete(s.settings, datasetID)
	for id, f := range s.flights {
		if f.DatasetID == datasetID {
			delete(s.flights, id)
		}
	}
	return nil
}

// InsertFlights bulk-inserts flights, skipping natural keys already present
// in the dataset. Returns the number actually inserted.
func (s *Store) InsertFlights(ctx context.Context, datasetID string, flights []model.Flight) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[datasetID]; !ok {
		return 0, model.ErrDatasetNotFound
	}

	existing := make(map[string]bool)
	for _, f := range s.flights {
		if f.DatasetID == datasetID {
			existing[f.FlightKey] = true
		}
	}

	inserted := 0
	for _, f := range flights {
		if existing[f.FlightKey] {
			continue
		}
		existing[f.FlightKey] = true
		copied := f
		copied.DatasetID = datasetID
		s.flights[f.ID] = &copied
		inserted++
	}
	return inserted, nil
}

// GetFlight returns one flight or model.ErrFlightNotFound.
func (s *Store) GetFlight(ctx context.Context, flightID string) (*model.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flight, ok := s.flights[flightID]
	if !ok {
		return nil, model.ErrFlightNotFound
	}
	copied := *flight
	return &copied, nil
}

// ListFlights returns a dataset's flights in stable (date, time, flight
// number) order.
func (s *Store) ListFlights(ctx context.Context, datasetID string) ([]model.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.datasets[datasetID]; !ok {
		return nil, model.ErrDatasetNotFound
	}

	var flights []model.Flight
	for _, f := range s.flights {
		if f.DatasetID == datasetID {
			flights = append(flights, *f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		a, b := flights[i], flights[j]
		if a.ScheduledDate != b.ScheduledDate {
			return a.ScheduledDate < b.ScheduledDate
		}
		if a.ScheduledTime != b.ScheduledTime {
			return a.ScheduledTime < b.ScheduledTime
		}
		return a.FlightNumber < b.FlightNumber
	})
	return flights, nil
}

// MarkOperated is the compare-and-swap mark path: the operated columns are
// written only if the flag is still false. won=false reports a concurrent
// loser; the returned flight is the authoritative row either way.
func (s *Store) MarkOperated(ctx context.Context, flightID, operator string, at time.Time) (*model.Flight, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flight, ok := s.flights[flightID]
	if !ok {
		return nil, false, model.ErrFlightNotFound
	}

	if flight.Operated {
		copied := *flight
		return &copied, false, nil
	}

	flight.Operated = true
	operatedAt := at
	flight.OperatedAt = &operatedAt
	flight.OperatedBy = operator

	copied := *flight
	return &copied, true, nil
}

// UpsertCategoryTargets writes targets last-writer-wins.
func (s *Store) UpsertCategoryTargets(ctx context.Context, datasetID string, targets []model.CategoryTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[datasetID]; !ok {
		return model.ErrDatasetNotFound
	}
	byCategory, ok := s.targets[datasetID]
	if !ok {
		byCategory = make(map[string]model.CategoryTarget)
		s.targets[datasetID] = byCategory
	}
	for _, t := range targets {
		byCategory[t.Category] = t
	}
	return nil
}

// GetCategoryTargets returns a dataset's targets ordered by category.
func (s *Store) GetCategoryTargets(ctx context.Context, datasetID string) ([]model.CategoryTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var targets []model.CategoryTarget
	for _, t := range s.targets[datasetID] {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Category < targets[j].Category
	})
	return targets, nil
}

// SaveSettings writes a dataset's settings last-writer-wins.
func (s *Store) SaveSettings(ctx context.Context, settings *model.DatasetSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[settings.DatasetID]; !ok {
		return model.ErrDatasetNotFound
	}
	copied := *settings
	s.settings[settings.DatasetID] = &copied
	return nil
}

// GetSettings returns a dataset's settings, nil if none saved yet.
func (s *Store) GetSettings(ctx context.Context, datasetID string) (*model.DatasetSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[datasetID]
	if !ok {
		return nil, nil
	}
	copied := *settings
	return &copied, nil
}

// ListRuns returns a dataset's assignment runs, newest first.
func (s *Store) ListRuns(ctx context.Context, datasetID string) ([]model.AssignmentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]model.AssignmentRun, len(s.runs[datasetID]))
	copy(runs, s.runs[datasetID])
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// ApplyAssignment executes one auto-assignment run atomically. The scope
// mutex serializes runs for the same (dataset, work date); the store mutex
// is held only while the decision is computed and applied, so no other
// writer can observe a partially labeled state.
func (s *Store) ApplyAssignment(ctx context.Context, scope model.AssignmentScope, run *model.AssignmentRun, decide model.DecideAssignment) error {
	lock := s.scopeLock(scope.LockKey())
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[scope.DatasetID]; !ok {
		return model.ErrDatasetNotFound
	}

	var flights []model.Flight
	for _, f := range s.flights {
		if f.DatasetID == scope.DatasetID {
			flights = append(flights, *f)
		}
	}
	var targets []model.CategoryTarget
	for _, t := range s.targets[scope.DatasetID] {
		targets = append(targets, t)
	}

	decision, err := decide(flights, targets)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, label := range decision.Labels {
		flight, ok := s.flights[label.FlightID]
		if !ok {
			continue
		}
		flight.ServiceFlag = label.Flag
		flight.ServiceFlagSource = model.SourceAuto
		updatedAt := now
		flight.ServiceFlagUpdatedAt = &updatedAt
		flight.ServiceFlagUpdatedBy = run.CreatedBy
		flight.ServiceFlagRunID = run.ID
	}

	run.Summary = decision.Summary
	run.UpdatedFlightCount = len(decision.Labels)
	s.runs[scope.DatasetID] = append(s.runs[scope.DatasetID], *run)
	return nil
}
