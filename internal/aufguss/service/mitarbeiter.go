package aufguss

import (
	"context"
	"fmt"
	"strings"

	"aufgussplan/internal/aufguss/db"
	"aufgussplan/internal/models"
)

const unnamedMitarbeiter = "Unbenannter Mitarbeiter"

type MitarbeiterDBLayer interface {
	ListMitarbeiter(ctx context.Context) ([]models.Mitarbeiter, error)
	GetMitarbeiter(ctx context.Context, id int64) (*models.Mitarbeiter, error)
	CreateMitarbeiter(ctx context.Context, m *models.Mitarbeiter) error
	UpdateMitarbeiter(ctx context.Context, m *models.Mitarbeiter) error
	DeleteMitarbeiter(ctx context.Context, id int64) (bool, error)
}

type MitarbeiterService struct {
	DB MitarbeiterDBLayer
}

func NewMitarbeiterService(store MitarbeiterDBLayer) *MitarbeiterService {
	return &MitarbeiterService{DB: store}
}

func (s *MitarbeiterService) List(ctx context.Context) ([]models.Mitarbeiter, error) {
	rows, err := s.DB.ListMitarbeiter(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mitarbeiter: %w", err)
	}
	return rows, nil
}

func (s *MitarbeiterService) Get(ctx context.Context, id int64) (*models.Mitarbeiter, error) {
	m, err := s.DB.GetMitarbeiter(ctx, id)
	if db.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get mitarbeiter %d: %w", id, err)
	}
	return m, nil
}

// Create and Update never fail on a blank name; the row gets a placeholder.
func (s *MitarbeiterService) Create(ctx context.Context, f Fields) (*models.Mitarbeiter, error) {
	m := &models.Mitarbeiter{
		Name:     f.Get("name"),
		Position: f.Get("position"),
		Aktiv:    true,
	}
	if m.Name == "" {
		m.Name = unnamedMitarbeiter
	}
	if f.Has("aktiv") {
		m.Aktiv = parseFlag(f.Get("aktiv"))
	}

	if err := s.DB.CreateMitarbeiter(ctx, m); err != nil {
		return nil, fmt.Errorf("create mitarbeiter: %w", err)
	}
	return m, nil
}

func (s *MitarbeiterService) Update(ctx context.Context, id int64, f Fields) (*models.Mitarbeiter, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.Has("name") {
		m.Name = f.Get("name")
		if m.Name == "" {
			m.Name = unnamedMitarbeiter
		}
	}
	if f.Has("position") {
		m.Position = f.Get("position")
	}
	if f.Has("aktiv") {
		m.Aktiv = parseFlag(f.Get("aktiv"))
	}

	if err := s.DB.UpdateMitarbeiter(ctx, m); err != nil {
		return nil, fmt.Errorf("update mitarbeiter %d: %w", id, err)
	}
	return m, nil
}

func (s *MitarbeiterService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.DB.DeleteMitarbeiter(ctx, id)
	if err != nil {
		return fmt.Errorf("delete mitarbeiter %d: %w", id, err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "", "0", "false", "off", "nein", "no":
		return false
	}
	return true
}
