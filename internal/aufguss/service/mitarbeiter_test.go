package aufguss_test

import (
	"context"
	"testing"

	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMitarbeiterDBLayer struct {
	mock.Mock
}

func (m *MockMitarbeiterDBLayer) ListMitarbeiter(ctx context.Context) ([]models.Mitarbeiter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Mitarbeiter), args.Error(1)
}

func (m *MockMitarbeiterDBLayer) GetMitarbeiter(ctx context.Context, id int64) (*models.Mitarbeiter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mitarbeiter), args.Error(1)
}

func (m *MockMitarbeiterDBLayer) CreateMitarbeiter(ctx context.Context, row *models.Mitarbeiter) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockMitarbeiterDBLayer) UpdateMitarbeiter(ctx context.Context, row *models.Mitarbeiter) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockMitarbeiterDBLayer) DeleteMitarbeiter(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestCreateMitarbeiterDefaultsName(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockMitarbeiterDBLayer)
	svc := aufguss.NewMitarbeiterService(mockDB)

	mockDB.On("CreateMitarbeiter", ctx, mock.MatchedBy(func(row *models.Mitarbeiter) bool {
		return row.Name == "Unbenannter Mitarbeiter" && row.Aktiv
	})).Return(nil).Once()

	m, err := svc.Create(ctx, aufguss.Fields{"name": "  ", "position": "Saunameister"})
	require.NoError(t, err)
	assert.Equal(t, "Saunameister", m.Position)
	mockDB.AssertExpectations(t)
}

func TestUpdateMitarbeiterKeepsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockMitarbeiterDBLayer)
	svc := aufguss.NewMitarbeiterService(mockDB)

	existing := &models.Mitarbeiter{ID: 3, Name: "Jo", Position: "Aufgieser", Aktiv: true}
	mockDB.On("GetMitarbeiter", ctx, int64(3)).Return(existing, nil)
	mockDB.On("UpdateMitarbeiter", ctx, existing).Return(nil)

	m, err := svc.Update(ctx, 3, aufguss.Fields{"aktiv": "0"})
	require.NoError(t, err)
	assert.Equal(t, "Jo", m.Name)
	assert.Equal(t, "Aufgieser", m.Position)
	assert.False(t, m.Aktiv)
}

func TestDeleteMitarbeiterNotFound(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockMitarbeiterDBLayer)
	svc := aufguss.NewMitarbeiterService(mockDB)

	mockDB.On("DeleteMitarbeiter", ctx, int64(9)).Return(false, nil)
	assert.ErrorIs(t, svc.Delete(ctx, 9), aufguss.ErrNotFound)
}
