package aufguss_test

import (
	"context"
	"database/sql"
	"testing"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInlineDBLayer is a mock implementation of the InlineDBLayer interface
type MockInlineDBLayer struct {
	mock.Mock
}

func (m *MockInlineDBLayer) GetDuftmittel(ctx context.Context, id int64) (*models.Duftmittel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Duftmittel), args.Error(1)
}

func (m *MockInlineDBLayer) GetMitarbeiter(ctx context.Context, id int64) (*models.Mitarbeiter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mitarbeiter), args.Error(1)
}

func (m *MockInlineDBLayer) GetSauna(ctx context.Context, id int64) (*models.Sauna, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sauna), args.Error(1)
}

func (m *MockInlineDBLayer) UpdateColumn(ctx context.Context, model interface{}, column string) error {
	args := m.Called(ctx, model, column)
	return args.Error(0)
}

func TestParseFieldIsClosed(t *testing.T) {
	field, err := aufguss.ParseField(aufguss.EntitySauna, "temperatur")
	require.NoError(t, err)
	assert.Equal(t, aufguss.SaunaTemperatur, field)
	assert.Equal(t, "temperatur", field.Column())
	assert.Equal(t, aufguss.EntitySauna, field.Entity())

	for _, tc := range []struct {
		entity aufguss.Entity
		key    string
	}{
		{aufguss.EntityDuftmittel, "temperatur"},
		{aufguss.EntityMitarbeiter, "aktiv"},
		{aufguss.EntitySauna, "name; DROP TABLE saunen"},
		{aufguss.Entity("plan"), "name"},
	} {
		_, err := aufguss.ParseField(tc.entity, tc.key)
		assert.ErrorIs(t, err, aufguss.ErrInvalidField, "%s.%s", tc.entity, tc.key)
	}
}

func TestApplyInlineEditTemperatur(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockInlineDBLayer)
	svc := aufguss.NewInlineEditService(mockDB)

	temp := 90
	sauna := &models.Sauna{ID: 2, Name: "Finnisch", Temperatur: &temp}
	mockDB.On("GetSauna", ctx, int64(2)).Return(sauna, nil)
	mockDB.On("UpdateColumn", ctx, mock.MatchedBy(func(row *models.Sauna) bool {
		return row.ID == 2
	}), "temperatur").Return(nil)

	require.NoError(t, svc.ApplyInlineEdit(ctx, aufguss.EntitySauna, 2, "temperatur", " 85 "))
	assert.Equal(t, 85, *sauna.Temperatur)

	require.NoError(t, svc.ApplyInlineEdit(ctx, aufguss.EntitySauna, 2, "temperatur", ""))
	assert.Nil(t, sauna.Temperatur)

	err := svc.ApplyInlineEdit(ctx, aufguss.EntitySauna, 2, "temperatur", "heiss")
	msg, ok := aufguss.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Temperatur muss eine Zahl sein", msg)

	mockDB.AssertNumberOfCalls(t, "UpdateColumn", 2)
}

func TestApplyInlineEditRejectsEmptyName(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockInlineDBLayer)
	svc := aufguss.NewInlineEditService(mockDB)

	mockDB.On("GetMitarbeiter", ctx, int64(4)).Return(&models.Mitarbeiter{ID: 4, Name: "Jo"}, nil)

	err := svc.ApplyInlineEdit(ctx, aufguss.EntityMitarbeiter, 4, "name", "   ")
	msg, ok := aufguss.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Name darf nicht leer sein", msg)
	mockDB.AssertNotCalled(t, "UpdateColumn", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyInlineEditUnknownRow(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockInlineDBLayer)
	svc := aufguss.NewInlineEditService(mockDB)

	mockDB.On("GetDuftmittel", ctx, int64(7)).Return(nil, sql.ErrNoRows)

	err := svc.ApplyInlineEdit(ctx, aufguss.EntityDuftmittel, 7, "beschreibung", "frisch")
	assert.ErrorIs(t, err, aufguss.ErrNotFound)

	err = svc.ApplyInlineEdit(ctx, aufguss.EntityDuftmittel, 7, "farbe", "gruen")
	assert.ErrorIs(t, err, aufguss.ErrInvalidField)
	mockDB.AssertNumberOfCalls(t, "GetDuftmittel", 1)
}
