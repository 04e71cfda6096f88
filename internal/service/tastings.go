package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bbmitchh/Logmypour2/internal/model"
	"github.com/bbmitchh/Logmypour2/internal/queue"
	"github.com/bbmitchh/Logmypour2/internal/repository"
	"github.com/bbmitchh/Logmypour2/internal/tasting"
)

// TastingStore is the persistence the tasting flows need.
type TastingStore interface {
	Create(ctx context.Context, t *model.Tasting) error
	ListByOwner(ctx context.Context, userID uint64) ([]model.Tasting, error)
	GetByID(ctx context.Context, id uint64) (model.Tasting, error)
	UpdateByIDAndOwner(ctx context.Context, t *model.Tasting, ownerID uint64) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// SummaryCache stores each user's cumulative summary. *cache.Summary
// satisfies it, including when nil. Invalidate bumps the user's write
// generation; Set stores only while the generation still equals gen.
type SummaryCache interface {
	Get(ctx context.Context, userID uint64) (tasting.Cumulative, bool)
	Generation(ctx context.Context, userID uint64) (int64, bool)
	Set(ctx context.Context, userID uint64, c tasting.Cumulative, gen int64)
	Invalidate(ctx context.Context, userID uint64)
}

// EventPublisher sends activity events. Publishing is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.TastingEvent) error
}

// ProductCount is one product's figures as entered on the form.
type ProductCount struct {
	Name   string
	ToSell int
	Sold   int
}

// TastingInput is a decoded tasting form.
type TastingInput struct {
	StoreName string
	At        time.Time
	Poured    int
	Products  []ProductCount
}

// HistoryEntry pairs a stored tasting with its summary.
type HistoryEntry struct {
	Tasting model.Tasting
	Rollup  tasting.Rollup
}

// History is a user's tastings, newest first, with their cumulative summary.
type History struct {
	Entries []HistoryEntry
	Total   tasting.Cumulative
}

// Tastings implements the tasting use cases for a signed-in user.
type Tastings struct {
	store   TastingStore
	cache   SummaryCache
	events  EventPublisher
	metrics Recorder
	log     *zap.Logger
	now     func() time.Time
}

// NewTastings wires the service. cache, events and rec may be nil.
func NewTastings(store TastingStore, cache SummaryCache, events EventPublisher, rec Recorder, log *zap.Logger) *Tastings {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tastings{store: store, cache: cache, events: events, metrics: rec, log: log, now: time.Now}
}

// Submit stores a new tasting owned by userID.
func (s *Tastings) Submit(ctx context.Context, userID uint64, in TastingInput) (model.Tasting, error) {
	t, err := buildTasting(in)
	if err != nil {
		return model.Tasting{}, err
	}
	t.UserID = userID
	if err := s.store.Create(ctx, &t); err != nil {
		return model.Tasting{}, fmt.Errorf("create tasting: %w", err)
	}
	s.afterWrite(ctx, queue.ActionCreated, t)
	return t, nil
}

// History returns every tasting of userID with per-tasting and cumulative
// summaries computed from the stored breakdowns.
func (s *Tastings) History(ctx context.Context, userID uint64) (History, error) {
	list, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return History{}, fmt.Errorf("list tastings: %w", err)
	}
	h := History{Entries: make([]HistoryEntry, 0, len(list))}
	rollups := make([]tasting.Rollup, 0, len(list))
	for _, t := range list {
		r := t.Rollup()
		h.Entries = append(h.Entries, HistoryEntry{Tasting: t, Rollup: r})
		rollups = append(rollups, r)
	}
	h.Total = tasting.Accumulate(rollups)
	return h, nil
}

// Summary returns the cumulative summary of userID, from cache when fresh.
// A summary computed while a write by the same user landed is returned but
// not cached.
func (s *Tastings) Summary(ctx context.Context, userID uint64) (tasting.Cumulative, error) {
	if s.cache == nil {
		h, err := s.History(ctx, userID)
		return h.Total, err
	}
	if c, ok := s.cache.Get(ctx, userID); ok {
		return c, nil
	}
	gen, genOK := s.cache.Generation(ctx, userID)
	h, err := s.History(ctx, userID)
	if err != nil {
		return tasting.Cumulative{}, err
	}
	if genOK {
		s.cache.Set(ctx, userID, h.Total, gen)
	}
	return h.Total, nil
}

// GetOwned loads a tasting that userID may change. It returns
// repository.ErrNotFound or repository.ErrForbidden otherwise.
func (s *Tastings) GetOwned(ctx context.Context, userID, id uint64) (model.Tasting, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Tasting{}, err
	}
	if t.UserID != userID {
		return model.Tasting{}, repository.ErrForbidden
	}
	return t, nil
}

// Edit replaces the contents of tasting id with in.
func (s *Tastings) Edit(ctx context.Context, userID, id uint64, in TastingInput) (model.Tasting, error) {
	t, err := buildTasting(in)
	if err != nil {
		return model.Tasting{}, err
	}
	t.ID = id
	if err := s.store.UpdateByIDAndOwner(ctx, &t, userID); err != nil {
		return model.Tasting{}, err
	}
	s.afterWrite(ctx, queue.ActionUpdated, t)
	return t, nil
}

// Remove deletes tasting id if userID owns it.
func (s *Tastings) Remove(ctx context.Context, userID, id uint64) error {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteByIDAndOwner(ctx, id, userID); err != nil {
		return err
	}
	s.afterWrite(ctx, queue.ActionDeleted, t)
	return nil
}

func (s *Tastings) afterWrite(ctx context.Context, action string, t model.Tasting) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, t.UserID)
	}
	s.metrics.TastingWrite(action)
	s.log.Info("tasting "+action,
		zap.Uint64("tasting_id", t.ID),
		zap.Uint64("user_id", t.UserID),
		zap.String("store", t.StoreName),
	)
	if s.events == nil {
		return
	}
	ev := queue.TastingEvent{
		Action:         action,
		TastingID:      t.ID,
		UserID:         t.UserID,
		StoreName:      t.StoreName,
		Date:           t.Date,
		BottlesSold:    t.BottlesSold,
		TastingsPoured: t.TastingsPoured,
		Conversion:     t.PouredToSoldPercent,
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("publish tasting event failed", zap.String("action", action), zap.Error(err))
	}
}

// buildTasting runs the form figures through the aggregation engine. A
// product named twice keeps its first position and takes the later counts.
func buildTasting(in TastingInput) (model.Tasting, error) {
	store := strings.TrimSpace(in.StoreName)
	if store == "" {
		return model.Tasting{}, ErrInvalidTasting
	}

	lines := make(model.Products, 0, len(in.Products))
	index := make(map[string]int, len(in.Products))
	for _, p := range in.Products {
		l := tasting.NewLine(p.Name, p.ToSell, p.Sold)
		if i, ok := index[p.Name]; ok {
			lines[i] = l
			continue
		}
		index[p.Name] = len(lines)
		lines = append(lines, l)
	}

	r := tasting.Summarize(lines, in.Poured)
	return model.Tasting{
		DayOfWeek:           in.At.Weekday().String(),
		Date:                in.At.Format(model.DateLayout),
		Time:                in.At.Format(model.TimeLayout),
		StoreName:           store,
		Products:            lines,
		BottlesToSell:       r.ToSell,
		BottlesSold:         r.Sold,
		BottlesLeft:         r.Left,
		PouredToSoldPercent: r.Conversion,
		TastingsPoured:      in.Poured,
	}, nil
}
