package aufguss

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"aufgussplan/internal/aufguss/db"
	"aufgussplan/internal/models"
)

// Entity names a reference table that supports inline edits.
type Entity string

const (
	EntityDuftmittel  Entity = "duftmittel"
	EntityMitarbeiter Entity = "mitarbeiter"
	EntitySauna       Entity = "sauna"
)

// EditableField is the closed set of columns an inline edit may touch.
type EditableField int

const (
	DuftmittelName EditableField = iota + 1
	DuftmittelBeschreibung
	MitarbeiterName
	MitarbeiterPosition
	SaunaName
	SaunaBeschreibung
	SaunaTemperatur
)

type fieldSpec struct {
	entity Entity
	key    string
	column string
	set    func(row interface{}, value string) error
}

var editableFields = map[EditableField]fieldSpec{
	DuftmittelName: {EntityDuftmittel, "name", "name", func(row interface{}, v string) error {
		name, err := requireName(v)
		row.(*models.Duftmittel).Name = name
		return err
	}},
	DuftmittelBeschreibung: {EntityDuftmittel, "beschreibung", "beschreibung", func(row interface{}, v string) error {
		row.(*models.Duftmittel).Beschreibung = strings.TrimSpace(v)
		return nil
	}},
	MitarbeiterName: {EntityMitarbeiter, "name", "name", func(row interface{}, v string) error {
		name, err := requireName(v)
		row.(*models.Mitarbeiter).Name = name
		return err
	}},
	MitarbeiterPosition: {EntityMitarbeiter, "position", "position", func(row interface{}, v string) error {
		row.(*models.Mitarbeiter).Position = strings.TrimSpace(v)
		return nil
	}},
	SaunaName: {EntitySauna, "name", "name", func(row interface{}, v string) error {
		name, err := requireName(v)
		row.(*models.Sauna).Name = name
		return err
	}},
	SaunaBeschreibung: {EntitySauna, "beschreibung", "beschreibung", func(row interface{}, v string) error {
		row.(*models.Sauna).Beschreibung = strings.TrimSpace(v)
		return nil
	}},
	SaunaTemperatur: {EntitySauna, "temperatur", "temperatur", func(row interface{}, v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			row.(*models.Sauna).Temperatur = nil
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalid("Temperatur muss eine Zahl sein")
		}
		row.(*models.Sauna).Temperatur = &n
		return nil
	}},
}

func requireName(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid("Name darf nicht leer sein")
	}
	return v, nil
}

// ParseField maps a request field name onto the closed field set of entity.
func ParseField(entity Entity, key string) (EditableField, error) {
	for field, spec := range editableFields {
		if spec.entity == entity && spec.key == key {
			return field, nil
		}
	}
	return 0, ErrInvalidField
}

// Column is the fixed column name behind the field.
func (f EditableField) Column() string {
	return editableFields[f].column
}

func (f EditableField) Entity() Entity {
	return editableFields[f].entity
}

type InlineDBLayer interface {
	GetDuftmittel(ctx context.Context, id int64) (*models.Duftmittel, error)
	GetMitarbeiter(ctx context.Context, id int64) (*models.Mitarbeiter, error)
	GetSauna(ctx context.Context, id int64) (*models.Sauna, error)
	UpdateColumn(ctx context.Context, model interface{}, column string) error
}

type InlineEditService struct {
	DB InlineDBLayer
}

func NewInlineEditService(store InlineDBLayer) *InlineEditService {
	return &InlineEditService{DB: store}
}

// ApplyInlineEdit validates value through the field's setter and writes
// exactly that one column.
func (s *InlineEditService) ApplyInlineEdit(ctx context.Context, entity Entity, id int64, key, value string) error {
	field, err := ParseField(entity, key)
	if err != nil {
		return err
	}

	row, err := s.load(ctx, entity, id)
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s %d: %w", entity, id, err)
	}

	if err := editableFields[field].set(row, value); err != nil {
		return err
	}
	if err := s.DB.UpdateColumn(ctx, row, field.Column()); err != nil {
		return fmt.Errorf("update %s %d %s: %w", entity, id, field.Column(), err)
	}
	return nil
}

func (s *InlineEditService) load(ctx context.Context, entity Entity, id int64) (interface{}, error) {
	switch entity {
	case EntityDuftmittel:
		return s.DB.GetDuftmittel(ctx, id)
	case EntityMitarbeiter:
		return s.DB.GetMitarbeiter(ctx, id)
	case EntitySauna:
		return s.DB.GetSauna(ctx, id)
	}
	return nil, ErrInvalidField
}
