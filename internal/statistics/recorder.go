package statistics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/utils"

	"github.com/google/uuid"
)

const (
	lockAttempts = 20
	lockPause    = 50 * time.Millisecond
)

// factKey identifies one fact row: the date plus every dimension value.
type factKey string

func newFactKey(datum string, a *models.Aufguss) factKey {
	parts := []string{
		datum,
		optID(a.AufgussNameID),
		optID(a.DuftmittelID),
		optID(a.SaunaID),
		optID(a.PlanID),
	}
	if a.Staerke != nil {
		parts = append(parts, strconv.Itoa(*a.Staerke))
	} else {
		parts = append(parts, "null")
	}
	return factKey(strings.Join(parts, ":"))
}

func optID(id *int64) string {
	if id == nil {
		return "null"
	}
	return strconv.FormatInt(*id, 10)
}

type FactStore interface {
	AufgussFacts(ctx context.Context, id int64) (*models.Aufguss, error)
	RecordOnce(ctx context.Context, a *models.Aufguss, datum string) (bool, error)
}

// Publisher receives an event after a fact row was incremented.
type Publisher interface {
	PublishStatistikLogged(ctx context.Context, event models.StatistikLoggedEvent) error
}

type LogResult struct {
	Logged bool
	Datum  string
}

// Recorder counts a shown session into the fact table.
type Recorder struct {
	DB        FactStore
	Locker    *Locker
	Cache     ReportCache
	Publisher Publisher
	Logger    *logger.Logger
	Location  *time.Location
	Now       func() time.Time
}

func NewRecorder(store FactStore, locker *Locker, cache ReportCache, publisher Publisher, loc *time.Location, log *logger.Logger) *Recorder {
	if loc == nil {
		loc = time.Local
	}
	return &Recorder{
		DB:        store,
		Locker:    locker,
		Cache:     cache,
		Publisher: publisher,
		Logger:    log,
		Location:  loc,
		Now:       time.Now,
	}
}

// Log increments the fact row for the session at most once per date. The
// session's own date is used, today when it has none.
func (r *Recorder) Log(ctx context.Context, aufgussID int64) (LogResult, error) {
	a, err := r.DB.AufgussFacts(ctx, aufgussID)
	if err != nil {
		return LogResult{}, err
	}

	datum := a.Datum
	if len(datum) >= len(utils.DateLayout) {
		datum = datum[:len(utils.DateLayout)]
	}
	if datum == "" {
		datum = utils.Today(r.Now(), r.Location)
	}

	release := r.lock(ctx, newFactKey(datum, a))
	logged, err := r.DB.RecordOnce(ctx, a, datum)
	release()
	if err != nil {
		return LogResult{}, fmt.Errorf("record aufguss %d: %w", aufgussID, err)
	}

	if !logged {
		return LogResult{Logged: false, Datum: datum}, nil
	}

	r.Logger.LogDatabase("INCREMENT", "statistik", fmt.Sprintf("aufguss %d counted for %s", aufgussID, datum))
	if r.Cache != nil {
		r.Cache.Invalidate(ctx)
	}
	if r.Publisher != nil {
		event := models.StatistikLoggedEvent{
			AufgussID: aufgussID,
			Datum:     datum,
			PlanID:    a.PlanID,
			LoggedAt:  r.Now(),
		}
		if err := r.Publisher.PublishStatistikLogged(ctx, event); err != nil {
			r.Logger.Warn("KAFKA", fmt.Sprintf("statistik event not published: %v", err))
		}
	}
	return LogResult{Logged: true, Datum: datum}, nil
}

// lock takes the Redis lock for key when Redis is configured and reachable.
// The returned func releases it; the transaction alone applies otherwise.
func (r *Recorder) lock(ctx context.Context, key factKey) func() {
	noop := func() {}
	if r.Locker == nil || r.Locker.Client == nil {
		return noop
	}

	name := lockKey(key)
	token := uuid.NewString()
	ok, err := r.Locker.AcquireWait(ctx, name, token, lockAttempts, lockPause)
	if err != nil {
		r.Logger.Warn("STATISTIK", fmt.Sprintf("lock %s unavailable: %v", name, err))
		return noop
	}
	if !ok {
		r.Logger.Warn("STATISTIK", fmt.Sprintf("lock %s busy, continuing without it", name))
		return noop
	}
	return func() {
		if err := r.Locker.Release(context.Background(), name, token); err != nil {
			r.Logger.Warn("STATISTIK", fmt.Sprintf("release %s: %v", name, err))
		}
	}
}
