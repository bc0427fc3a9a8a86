package display

import (
	"context"
	"fmt"
	"time"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/utils"
)

// SessionLister lists sessions for a calendar date; an empty plan filter
// returns every plan.
type SessionLister interface {
	ListAufguesse(ctx context.Context, datum string, planID *int64) ([]models.AufgussDetail, error)
}

type PlanGetter interface {
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
}

// Ad is the plan advertisement a display interleaves with the schedule.
type Ad struct {
	Media           string `json:"media"`
	Type            string `json:"type"`
	IntervalMinutes int    `json:"interval_minutes"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Today is what a display needs to render the current day.
type Today struct {
	Datum     string                 `json:"datum"`
	Zeit      string                 `json:"zeit"`
	PlanID    *int64                 `json:"plan_id"`
	PlanName  string                 `json:"plan_name,omitempty"`
	Aufguesse []models.AufgussDetail `json:"aufguesse"`
	CurrentID *int64                 `json:"current_id"`
	NextID    *int64                 `json:"next_id"`
	Ad        *Ad                    `json:"werbung,omitempty"`
}

type Service struct {
	Sessions       SessionLister
	Plans          PlanGetter
	Logger         *logger.Logger
	Location       *time.Location
	DefaultMinutes int
	Now            func() time.Time
}

func NewService(sessions SessionLister, plans PlanGetter, loc *time.Location, defaultMinutes int, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if defaultMinutes <= 0 {
		defaultMinutes = 15
	}
	return &Service{
		Sessions:       sessions,
		Plans:          plans,
		Logger:         log,
		Location:       loc,
		DefaultMinutes: defaultMinutes,
		Now:            time.Now,
	}
}

// Today loads the day's sessions, optionally for one plan, and marks the
// running and upcoming session.
func (s *Service) Today(ctx context.Context, planID *int64) (*Today, error) {
	now := s.Now().In(s.Location)
	datum := utils.Today(now, s.Location)

	all, err := s.Sessions.ListAufguesse(ctx, datum, nil)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", datum, err)
	}

	rows := make([]models.AufgussDetail, 0, len(all))
	for _, row := range all {
		if planID != nil && (row.PlanID == nil || *row.PlanID != *planID) {
			continue
		}
		rows = append(rows, row)
	}

	minute := now.Hour()*60 + now.Minute()
	out := &Today{
		Datum:     datum,
		Zeit:      now.Format(utils.ClockSecLayout),
		PlanID:    planID,
		Aufguesse: rows,
		CurrentID: CurrentID(rows, minute, s.DefaultMinutes),
		NextID:    NextID(rows, minute),
	}

	if planID != nil && s.Plans != nil {
		plan, err := s.Plans.GetPlan(ctx, *planID)
		if err != nil {
			s.Logger.Warn("DISPLAY", fmt.Sprintf("Plan %d not loaded: %v", *planID, err))
		} else {
			out.PlanName = plan.Name
			out.Ad = planAd(plan)
		}
	}
	return out, nil
}

func planAd(p *models.Plan) *Ad {
	if !p.WerbungAktiv || p.WerbungMedia == "" {
		return nil
	}
	return &Ad{
		Media:           p.WerbungMedia,
		Type:            p.WerbungMediaTyp,
		IntervalMinutes: p.WerbungIntervalMinuten,
		DurationSeconds: p.WerbungDauerSekunden,
	}
}
