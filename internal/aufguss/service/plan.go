package aufguss

import (
	"context"
	"fmt"

	"aufgussplan/internal/aufguss/db"
	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
)

const (
	defaultAdInterval = 10
	defaultAdDuration = 10
)

type PlanDBLayer interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	DeletePlan(ctx context.Context, id int64) (bool, error)
	UpdatePlanAd(ctx context.Context, plan *models.Plan) error
}

// MediaRemover deletes a stored upload by its relative path.
type MediaRemover interface {
	Remove(path string) error
}

// MediaFile describes an upload that has already been written to storage.
type MediaFile struct {
	Path string
	Type string
	Name string
}

// PlanAdInput carries the advertisement settings of a plan. Zero timings
// fall back to the defaults; Media is nil when no new file was sent.
type PlanAdInput struct {
	PlanID          int64
	Enabled         bool
	IntervalMinutes *int
	DurationSeconds *int
	Media           *MediaFile
}

type PlanService struct {
	DB       PlanDBLayer
	Media    MediaRemover
	Notifier ChangeNotifier
	Logger   *logger.Logger
}

func NewPlanService(store PlanDBLayer, media MediaRemover, notifier ChangeNotifier, log *logger.Logger) *PlanService {
	return &PlanService{DB: store, Media: media, Notifier: notifier, Logger: log}
}

func (s *PlanService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	plans, err := s.DB.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

func (s *PlanService) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	plan, err := s.DB.GetPlan(ctx, id)
	if db.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %d: %w", id, err)
	}
	return plan, nil
}

// DeletePlan removes the plan, detaches its sessions and drops its ad file.
func (s *PlanService) DeletePlan(ctx context.Context, id int64) error {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.DB.DeletePlan(ctx, id)
	if err != nil {
		return fmt.Errorf("delete plan %d: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.removeMedia(plan.WerbungMedia)
	s.Logger.Info("PLAN", fmt.Sprintf("Deleted plan %d %q", id, plan.Name))
	if s.Notifier != nil {
		s.Notifier.AufguesseChanged(ctx, models.AufguesseChangedEvent{Action: models.ChangeDeleted, PlanID: &id})
	}
	return nil
}

// UpdatePlanAd stores new ad settings. A new media file replaces and removes
// the previous one.
func (s *PlanService) UpdatePlanAd(ctx context.Context, in PlanAdInput) (*models.Plan, error) {
	if in.PlanID <= 0 {
		return nil, invalid("Ungueltige Plan-ID")
	}
	plan, err := s.GetPlan(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	previous := plan.WerbungMedia
	plan.WerbungAktiv = in.Enabled
	plan.WerbungIntervalMinuten = clampTiming(in.IntervalMinutes, defaultAdInterval)
	plan.WerbungDauerSekunden = clampTiming(in.DurationSeconds, defaultAdDuration)
	if in.Media != nil {
		plan.WerbungMedia = in.Media.Path
		plan.WerbungMediaTyp = in.Media.Type
		plan.WerbungMediaName = in.Media.Name
	}

	if err := s.DB.UpdatePlanAd(ctx, plan); err != nil {
		return nil, fmt.Errorf("update plan ad %d: %w", plan.ID, err)
	}

	if in.Media != nil && previous != "" && previous != in.Media.Path {
		s.removeMedia(previous)
	}
	return plan, nil
}

func clampTiming(v *int, def int) int {
	if v == nil {
		return def
	}
	if *v < 1 {
		return 1
	}
	return *v
}

func (s *PlanService) removeMedia(path string) {
	if path == "" || s.Media == nil {
		return
	}
	if err := s.Media.Remove(path); err != nil {
		s.Logger.Warn("PLAN", fmt.Sprintf("Could not remove media %s: %v", path, err))
	}
}
