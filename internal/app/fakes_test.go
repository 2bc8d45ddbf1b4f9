package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"pricetrail/internal/domain/shared"
	"pricetrail/internal/ports/outbound"

	"github.com/google/uuid"
)

// fakeSessionStore is an in-memory session store with injectable failures
type fakeSessionStore struct {
	mu       sync.Mutex
	blob     []byte
	loadErr  error
	saveErr  error
	clearErr error
}

func (s *fakeSessionStore) Load(context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	if s.blob == nil {
		return nil, false, nil
	}
	return s.blob, true, nil
}

func (s *fakeSessionStore) Save(_ context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.blob = blob
	return nil
}

func (s *fakeSessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.blob = nil
	return nil
}

func (s *fakeSessionStore) stored() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob
}

// fakeAuthAPI is a scripted auth surface counting calls
type fakeAuthAPI struct {
	mu          sync.Mutex
	healthErr   error
	authErr     error
	authResult  *outbound.AuthResult
	createErr   error
	token       string
	healthCalls int
	authCalls   int
	createCalls int
}

func (a *fakeAuthAPI) CheckHealth(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.healthCalls++
	return a.healthErr
}

func (a *fakeAuthAPI) AuthWithPassword(_ context.Context, identity, password string) (*outbound.AuthResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authCalls++
	if a.authErr != nil {
		return nil, a.authErr
	}
	return a.authResult, nil
}

func (a *fakeAuthAPI) CreateUser(_ context.Context, user outbound.NewUser) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.createCalls++
	return a.createErr
}

func (a *fakeAuthAPI) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *fakeAuthAPI) currentToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// fakeRecordStore is an in-memory record store honoring the filter and
// sort subset the tracker uses
type fakeRecordStore struct {
	mu         sync.Mutex
	records    map[outbound.Collection][]outbound.Record
	listCalls  map[outbound.Collection]int
	createErr  error
	deleteErrs map[string]error
	clock      time.Time
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		records:    make(map[outbound.Collection][]outbound.Record),
		listCalls:  make(map[outbound.Collection]int),
		deleteErrs: make(map[string]error),
		clock:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

const fakeTimeLayout = "2006-01-02 15:04:05.000Z"

// add inserts a record stamped one minute after the previous one
func (s *fakeRecordStore) add(collection outbound.Collection, fields outbound.Record) outbound.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(collection, fields)
}

func (s *fakeRecordStore) addLocked(collection outbound.Collection, fields outbound.Record) outbound.Record {
	record := outbound.Record{}
	for k, v := range fields {
		record[k] = v
	}
	if record.Str("id") == "" {
		record["id"] = uuid.New().String()
	}
	s.clock = s.clock.Add(time.Minute)
	record["created_at"] = s.clock.Format(fakeTimeLayout)
	record["updated_at"] = s.clock.Format(fakeTimeLayout)

	s.records[collection] = append(s.records[collection], record)
	return record
}

func (s *fakeRecordStore) List(_ context.Context, collection outbound.Collection, filter outbound.Filter, sortKey outbound.Sort) ([]outbound.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls[collection]++

	var matched []outbound.Record
	for _, record := range s.records[collection] {
		if matchesFilter(record, filter) {
			matched = append(matched, record)
		}
	}

	if sortKey.Field != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].Time(sortKey.Field), matched[j].Time(sortKey.Field)
			if sortKey.Descending {
				return a.After(b)
			}
			return a.Before(b)
		})
	}

	return matched, nil
}

func matchesFilter(record outbound.Record, filter outbound.Filter) bool {
	for _, clause := range filter {
		switch clause.Op {
		case outbound.OpEqual:
			if record[clause.Field] != clause.Value {
				return false
			}
		case outbound.OpAnyOf:
			found := false
			for _, id := range clause.Values {
				if record.Str(clause.Field) == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case outbound.OpAtLeast:
			bound, _ := clause.Value.(time.Time)
			if record.Time(clause.Field).Before(bound) {
				return false
			}
		case outbound.OpAtMost:
			bound, _ := clause.Value.(time.Time)
			if record.Time(clause.Field).After(bound) {
				return false
			}
		}
	}
	return true
}

func (s *fakeRecordStore) Create(_ context.Context, collection outbound.Collection, fields outbound.Record) (outbound.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.addLocked(collection, fields), nil
}

func (s *fakeRecordStore) Update(_ context.Context, collection outbound.Collection, id string, fields outbound.Record) (outbound.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records[collection] {
		if record.Str("id") == id {
			for k, v := range fields {
				record[k] = v
			}
			return record, nil
		}
	}
	return nil, shared.ErrRecordNotFound
}

func (s *fakeRecordStore) Delete(_ context.Context, collection outbound.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.deleteErrs[id]; ok {
		return err
	}
	for i, record := range s.records[collection] {
		if record.Str("id") == id {
			s.records[collection] = append(s.records[collection][:i], s.records[collection][i+1:]...)
			return nil
		}
	}
	return shared.ErrRecordNotFound
}

func (s *fakeRecordStore) count(collection outbound.Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records[collection])
}

func (s *fakeRecordStore) calls(collection outbound.Collection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls[collection]
}
