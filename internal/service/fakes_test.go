package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/queue"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint64]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == repository.NormalizeEmail(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	rows map[string]model.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{rows: map[string]model.Session{}} }

func (f *fakeSessions) Create(_ context.Context, s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.ID] = s
	return nil
}

func (f *fakeSessions) Validate(_ context.Context, id string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || s.RevokedAt != 0 {
		return 0, repository.ErrNotFound
	}
	return s.UserID, nil
}

func (f *fakeSessions) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.rows[id]; ok {
		s.RevokedAt = 1
		f.rows[id] = s
	}
	return nil
}

type fakeTastings struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Tasting
	lists  int
	// onList runs before each ListByOwner, outside the lock.
	onList func()
}

func newFakeTastings() *fakeTastings { return &fakeTastings{rows: map[uint64]model.Tasting{}} }

func (f *fakeTastings) Create(_ context.Context, t *model.Tasting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTastings) ListByOwner(_ context.Context, userID uint64) ([]model.Tasting, error) {
	if f.onList != nil {
		f.onList()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []model.Tasting
	for _, t := range f.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeTastings) GetByID(_ context.Context, id uint64) (model.Tasting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return model.Tasting{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTastings) UpdateByIDAndOwner(_ context.Context, t *model.Tasting, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.UserID != ownerID {
		return repository.ErrForbidden
	}
	t.UserID = ownerID
	f.rows[t.ID] = *t
	return nil
}

func (f *fakeTastings) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.UserID != ownerID {
		return repository.ErrForbidden
	}
	delete(f.rows, id)
	return nil
}

type fakeCache struct {
	entries     map[uint64]tasting.Cumulative
	gens        map[uint64]int64
	invalidated []uint64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uint64]tasting.Cumulative{}, gens: map[uint64]int64{}}
}

func (f *fakeCache) Get(_ context.Context, uid uint64) (tasting.Cumulative, bool) {
	c, ok := f.entries[uid]
	return c, ok
}

func (f *fakeCache) Generation(_ context.Context, uid uint64) (int64, bool) {
	return f.gens[uid], true
}

func (f *fakeCache) Set(_ context.Context, uid uint64, c tasting.Cumulative, gen int64) {
	if f.gens[uid] == gen {
		f.entries[uid] = c
	}
}

func (f *fakeCache) Invalidate(_ context.Context, uid uint64) {
	f.gens[uid]++
	delete(f.entries, uid)
	f.invalidated = append(f.invalidated, uid)
}

type fakePublisher struct {
	events []queue.TastingEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev queue.TastingEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type countingRecorder struct {
	logins  map[string]int
	signups map[string]int
	writes  map[string]int
}

func newRecorder() *countingRecorder {
	return &countingRecorder{logins: map[string]int{}, signups: map[string]int{}, writes: map[string]int{}}
}

func (r *countingRecorder) Login(o string)        { r.logins[o]++ }
func (r *countingRecorder) Signup(o string)       { r.signups[o]++ }
func (r *countingRecorder) TastingWrite(a string) { r.writes[a]++ }

var errBroker = errors.New("broker down")
