package aufguss

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"aufgussplan/internal/aufguss/db"
	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/utils"
)

type AufgussDBLayer interface {
	ListAufguesse(ctx context.Context, filter db.AufgussFilter) ([]models.AufgussDetail, error)
	GetAufguss(ctx context.Context, id int64) (*models.Aufguss, error)
	GetAufgussDetail(ctx context.Context, id int64) (*models.AufgussDetail, error)
	AufgussExists(ctx context.Context, id int64) (bool, error)
	CreateAufguss(ctx context.Context, aufguss *models.Aufguss) error
	UpdateAufguss(ctx context.Context, aufguss *models.Aufguss) error
	DeleteAufguss(ctx context.Context, id int64) (bool, error)

	CreatePlan(ctx context.Context, plan *models.Plan) error
	ReferenceExists(ctx context.Context, model interface{}, id int64) (bool, error)
	FindOrCreateMitarbeiter(ctx context.Context, name string) (int64, error)
	FindOrCreateDuftmittel(ctx context.Context, name string) (int64, error)
	FindOrCreateSauna(ctx context.Context, name string) (int64, error)
	FindOrCreateAufgussName(ctx context.Context, name string) (int64, error)
	SetBild(ctx context.Context, model interface{}, id int64, path string) error
}

// ChangeNotifier is told about every session write so displays can refresh.
type ChangeNotifier interface {
	AufguesseChanged(ctx context.Context, event models.AufguesseChangedEvent)
}

// Notifiers fans one change out to several notifiers.
type Notifiers []ChangeNotifier

func (n Notifiers) AufguesseChanged(ctx context.Context, event models.AufguesseChangedEvent) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.AufguesseChanged(ctx, event)
		}
	}
}

type AufgussService struct {
	DB             AufgussDBLayer
	Notifier       ChangeNotifier
	Logger         *logger.Logger
	DefaultMinutes int
	Now            func() time.Time
}

func NewAufgussService(store AufgussDBLayer, notifier ChangeNotifier, log *logger.Logger) *AufgussService {
	return &AufgussService{
		DB:             store,
		Notifier:       notifier,
		Logger:         log,
		DefaultMinutes: 15,
		Now:            time.Now,
	}
}

// ListAufguesse filters by plan when planID is set, else by datum when set.
func (s *AufgussService) ListAufguesse(ctx context.Context, datum string, planID *int64) ([]models.AufgussDetail, error) {
	rows, err := s.DB.ListAufguesse(ctx, db.AufgussFilter{Datum: datum, PlanID: planID})
	if err != nil {
		return nil, fmt.Errorf("list aufguesse: %w", err)
	}
	return rows, nil
}

func (s *AufgussService) GetAufguss(ctx context.Context, id int64) (*models.AufgussDetail, error) {
	row, err := s.DB.GetAufgussDetail(ctx, id)
	if db.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get aufguss %d: %w", id, err)
	}
	return row, nil
}

func (s *AufgussService) CreateAufguss(ctx context.Context, f Fields) (int64, error) {
	var a models.Aufguss
	if err := s.apply(ctx, f, &a, true); err != nil {
		return 0, err
	}
	if err := s.DB.CreateAufguss(ctx, &a); err != nil {
		return 0, fmt.Errorf("create aufguss: %w", err)
	}
	if err := s.storeImages(ctx, f, &a); err != nil {
		return 0, err
	}

	s.Logger.Info("AUFGUSS", fmt.Sprintf("Created aufguss %d on %s %s", a.ID, a.Datum, a.ZeitAnfang))
	s.notify(ctx, models.ChangeCreated, &a)
	return a.ID, nil
}

// UpdateAufguss applies only the keys present in f.
func (s *AufgussService) UpdateAufguss(ctx context.Context, id int64, f Fields) error {
	a, err := s.DB.GetAufguss(ctx, id)
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load aufguss %d: %w", id, err)
	}

	if err := s.apply(ctx, f, a, false); err != nil {
		return err
	}
	if err := s.DB.UpdateAufguss(ctx, a); err != nil {
		return fmt.Errorf("update aufguss %d: %w", id, err)
	}
	if err := s.storeImages(ctx, f, a); err != nil {
		return err
	}

	s.notify(ctx, models.ChangeUpdated, a)
	return nil
}

// DeleteAufguss checks existence first so a missing id maps to ErrNotFound.
func (s *AufgussService) DeleteAufguss(ctx context.Context, id int64) error {
	a, err := s.DB.GetAufguss(ctx, id)
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load aufguss %d: %w", id, err)
	}

	deleted, err := s.DB.DeleteAufguss(ctx, id)
	if err != nil {
		return fmt.Errorf("delete aufguss %d: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.Logger.Info("AUFGUSS", fmt.Sprintf("Deleted aufguss %d", id))
	s.notify(ctx, models.ChangeDeleted, a)
	return nil
}

func (s *AufgussService) notify(ctx context.Context, action string, a *models.Aufguss) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.AufguesseChanged(ctx, models.AufguesseChangedEvent{
		Action:    action,
		AufgussID: a.ID,
		PlanID:    a.PlanID,
		At:        s.Now(),
	})
}

func (s *AufgussService) apply(ctx context.Context, f Fields, a *models.Aufguss, creating bool) error {
	if creating || f.Has("datum") {
		datum := f.Get("datum")
		if datum == "" {
			return invalid("Datum ist erforderlich")
		}
		if _, err := utils.ParseDate(datum, time.UTC); err != nil {
			return invalid("Ungültiges Datum")
		}
		a.Datum = datum
	}

	if err := s.applyTimes(f, a, creating); err != nil {
		return err
	}

	if creating || f.Has("staerke") {
		staerke, err := parseStaerke(f.Get("staerke"))
		if err != nil {
			return err
		}
		a.Staerke = staerke
	}

	if err := s.applyReferences(ctx, f, a); err != nil {
		return err
	}

	if f.HasAny("name", "aufguss_name") {
		a.Name = f.First("name", "aufguss_name")
	}
	return nil
}

func (s *AufgussService) applyTimes(f Fields, a *models.Aufguss, creating bool) error {
	startChanged := creating || f.HasAny("zeit_anfang", "zeit")
	if startChanged {
		start := f.First("zeit_anfang", "zeit")
		if start == "" {
			return invalid("Startzeit ist erforderlich")
		}
		minutes, err := utils.ParseClock(start)
		if err != nil || minutes >= 24*60 {
			return invalid("Ungültige Startzeit")
		}
		a.ZeitAnfang = utils.FormatClock(minutes)
		a.Zeit = a.ZeitAnfang
	}

	if !startChanged && !f.Has("zeit_ende") {
		return nil
	}

	startMinutes, err := utils.ParseClock(a.ZeitAnfang)
	if err != nil {
		return invalid("Ungültige Startzeit")
	}

	end := f.Get("zeit_ende")
	if end == "" {
		a.ZeitEnde = utils.FormatClock(startMinutes + s.defaultMinutes())
		return nil
	}
	endMinutes, err := utils.ParseClock(end)
	if err != nil {
		return invalid("Ungültige Endzeit")
	}
	if endMinutes < startMinutes {
		return invalid("Endzeit liegt vor der Startzeit")
	}
	a.ZeitEnde = utils.FormatClock(endMinutes)
	return nil
}

func (s *AufgussService) defaultMinutes() int {
	if s.DefaultMinutes > 0 {
		return s.DefaultMinutes
	}
	return 15
}

func parseStaerke(value string) (*int, error) {
	if value == "" || value == "null" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 6 {
		return nil, invalid("Stärke muss zwischen 1 und 6 liegen")
	}
	return &n, nil
}

type reference struct {
	idKey    string
	nameKeys []string
	label    string
	model    interface{}
	create   func(ctx context.Context, name string) (int64, error)
	target   **int64
}

func (s *AufgussService) applyReferences(ctx context.Context, f Fields, a *models.Aufguss) error {
	refs := []reference{
		{"aufguss_name_id", []string{"aufguss_name", "name"}, "Aufguss-Name", (*models.AufgussName)(nil), s.DB.FindOrCreateAufgussName, &a.AufgussNameID},
		{"duftmittel_id", []string{"duftmittel", "duftmittel_name"}, "Duftmittel", (*models.Duftmittel)(nil), s.DB.FindOrCreateDuftmittel, &a.DuftmittelID},
		{"sauna_id", []string{"sauna", "sauna_name"}, "Sauna", (*models.Sauna)(nil), s.DB.FindOrCreateSauna, &a.SaunaID},
		{"mitarbeiter_id", []string{"aufgieser", "aufgieser_name"}, "Mitarbeiter", (*models.Mitarbeiter)(nil), s.DB.FindOrCreateMitarbeiter, &a.MitarbeiterID},
		{"plan_id", []string{"plan_name"}, "Plan", (*models.Plan)(nil), s.createPlanNamed(f), &a.PlanID},
	}

	for _, ref := range refs {
		if !f.HasAny(append([]string{ref.idKey}, ref.nameKeys...)...) {
			continue
		}
		id, err := s.resolve(ctx, f, ref)
		if err != nil {
			return err
		}
		*ref.target = id
	}
	return nil
}

// resolve prefers an explicit id and falls back to get-or-create by name.
func (s *AufgussService) resolve(ctx context.Context, f Fields, ref reference) (*int64, error) {
	if raw := f.Get(ref.idKey); raw != "" {
		id, ok := parseOptionalID(raw)
		if !ok {
			return nil, invalid(fmt.Sprintf("Ungültige %s-ID", ref.label))
		}
		if id != nil {
			exists, err := s.DB.ReferenceExists(ctx, ref.model, *id)
			if err != nil {
				return nil, fmt.Errorf("check %s %d: %w", ref.label, *id, err)
			}
			if !exists {
				return nil, invalid(fmt.Sprintf("%s nicht gefunden", ref.label))
			}
			return id, nil
		}
	}

	name := f.First(ref.nameKeys...)
	if name == "" {
		return nil, nil
	}
	id, err := ref.create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %q: %w", ref.label, name, err)
	}
	return &id, nil
}

func (s *AufgussService) createPlanNamed(f Fields) func(ctx context.Context, name string) (int64, error) {
	return func(ctx context.Context, name string) (int64, error) {
		plan := &models.Plan{
			Name:                   name,
			Beschreibung:           f.Get("plan_beschreibung"),
			WerbungIntervalMinuten: defaultAdInterval,
			WerbungDauerSekunden:   defaultAdDuration,
		}
		if err := s.DB.CreatePlan(ctx, plan); err != nil {
			return 0, err
		}
		s.Logger.Info("PLAN", fmt.Sprintf("Created plan %d %q", plan.ID, plan.Name))
		return plan.ID, nil
	}
}

func (s *AufgussService) storeImages(ctx context.Context, f Fields, a *models.Aufguss) error {
	if path := f.Get("mitarbeiter_bild"); path != "" && a.MitarbeiterID != nil {
		if err := s.DB.SetBild(ctx, (*models.Mitarbeiter)(nil), *a.MitarbeiterID, path); err != nil {
			return fmt.Errorf("store mitarbeiter bild: %w", err)
		}
	}
	if path := f.Get("sauna_bild"); path != "" && a.SaunaID != nil {
		if err := s.DB.SetBild(ctx, (*models.Sauna)(nil), *a.SaunaID, path); err != nil {
			return fmt.Errorf("store sauna bild: %w", err)
		}
	}
	return nil
}
