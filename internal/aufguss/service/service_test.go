package aufguss_test

import (
	"context"
	"errors"
	"testing"

	"aufgussplan/internal/aufguss/db"
	aufguss "aufgussplan/internal/aufguss/service"
	"aufgussplan/internal/database/dbtest"
	"aufgussplan/internal/models"
	"aufgussplan/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []models.AufguesseChangedEvent
}

func (n *recordingNotifier) AufguesseChanged(_ context.Context, event models.AufguesseChangedEvent) {
	n.events = append(n.events, event)
}

func newAufgussService(t *testing.T) (*aufguss.AufgussService, *db.DB, *recordingNotifier) {
	store := &db.DB{Bun: dbtest.New(t)}
	notifier := &recordingNotifier{}
	return aufguss.NewAufgussService(store, notifier, nil), store, notifier
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	msg, ok := aufguss.IsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	return msg
}

func TestCreateAufgussWithNamedReferences(t *testing.T) {
	svc, store, notifier := newAufgussService(t)
	ctx := context.Background()

	id, err := svc.CreateAufguss(ctx, aufguss.Fields{
		"datum":             "2024-01-10",
		"zeit_anfang":       "10:00",
		"staerke":           "3",
		"aufguss_name":      "Birke",
		"duftmittel":        "Eukalyptus",
		"sauna":             "Finnische Sauna",
		"aufgieser":         "Jo",
		"plan_name":         "Wochenende",
		"plan_beschreibung": "Sa und So",
		"sauna_bild":        "saunen/finn.jpg",
	})
	require.NoError(t, err)

	got, err := svc.GetAufguss(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", got.ZeitAnfang)
	assert.Equal(t, "10:15:00", got.ZeitEnde)
	assert.Equal(t, 3, *got.Staerke)
	assert.Equal(t, "Birke", got.AufgussName)
	assert.Equal(t, "Eukalyptus", got.DuftmittelName)
	assert.Equal(t, "Finnische Sauna", got.SaunaName)
	assert.Equal(t, "saunen/finn.jpg", got.SaunaBild)
	assert.Equal(t, "Jo", got.MitarbeiterName)
	assert.Equal(t, "Wochenende", got.PlanName)

	plan, err := store.GetPlan(ctx, *got.PlanID)
	require.NoError(t, err)
	assert.Equal(t, "Sa und So", plan.Beschreibung)

	again, err := svc.CreateAufguss(ctx, aufguss.Fields{
		"datum": "2024-01-10", "zeit": "12:00", "duftmittel": "Eukalyptus",
	})
	require.NoError(t, err)
	second, err := svc.GetAufguss(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, *got.DuftmittelID, *second.DuftmittelID)
	assert.Equal(t, "12:00:00", second.ZeitAnfang)
	assert.Equal(t, "12:00:00", second.Zeit)
	assert.Nil(t, second.Staerke)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, models.ChangeCreated, notifier.events[0].Action)
}

func TestCreateAufgussValidation(t *testing.T) {
	svc, _, _ := newAufgussService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		fields aufguss.Fields
		want   string
	}{
		{"missing date", aufguss.Fields{"zeit_anfang": "10:00"}, "Datum ist erforderlich"},
		{"bad date", aufguss.Fields{"datum": "10.01.2024", "zeit_anfang": "10:00"}, "Ungültiges Datum"},
		{"missing start", aufguss.Fields{"datum": "2024-01-10"}, "Startzeit ist erforderlich"},
		{"bad start", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "25:99"}, "Ungültige Startzeit"},
		{"start past midnight", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "24:10"}, "Ungültige Startzeit"},
		{"end before start", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00", "zeit_ende": "09:00"}, "Endzeit liegt vor der Startzeit"},
		{"strength too high", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00", "staerke": "7"}, "Stärke muss zwischen 1 und 6 liegen"},
		{"unknown scent id", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00", "duftmittel_id": "99"}, "Duftmittel nicht gefunden"},
		{"bad plan id", aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00", "plan_id": "abc"}, "Ungültige Plan-ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAufguss(ctx, tc.fields)
			require.Error(t, err)
			assert.Equal(t, tc.want, validationMessage(t, err))
		})
	}
}

func TestCreateAufgussEndingAfterMidnight(t *testing.T) {
	svc, _, _ := newAufgussService(t)
	ctx := context.Background()

	id, err := svc.CreateAufguss(ctx, aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "23:50"})
	require.NoError(t, err)

	got, err := svc.GetAufguss(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "23:50:00", got.ZeitAnfang)
	assert.Equal(t, "24:05:00", got.ZeitEnde)

	start, err := utils.ParseClock(got.ZeitAnfang)
	require.NoError(t, err)
	end, err := utils.ParseClock(got.ZeitEnde)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, end, start)

	require.NoError(t, svc.UpdateAufguss(ctx, id, aufguss.Fields{"zeit_ende": "24:20"}))
	got, err = svc.GetAufguss(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "24:20:00", got.ZeitEnde)
}

func TestUpdateAufgussIsPartial(t *testing.T) {
	svc, _, notifier := newAufgussService(t)
	ctx := context.Background()

	id, err := svc.CreateAufguss(ctx, aufguss.Fields{
		"datum": "2024-01-10", "zeit_anfang": "10:00", "zeit_ende": "10:20", "staerke": "2", "duftmittel": "Minze",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateAufguss(ctx, id, aufguss.Fields{"staerke": "5"}))
	got, err := svc.GetAufguss(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.Staerke)
	assert.Equal(t, "10:20:00", got.ZeitEnde)
	assert.Equal(t, "Minze", got.DuftmittelName)

	err = svc.UpdateAufguss(ctx, id, aufguss.Fields{"zeit_ende": "09:00"})
	assert.Equal(t, "Endzeit liegt vor der Startzeit", validationMessage(t, err))

	require.NoError(t, svc.UpdateAufguss(ctx, id, aufguss.Fields{"duftmittel_id": ""}))
	got, err = svc.GetAufguss(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.DuftmittelID)

	err = svc.UpdateAufguss(ctx, 999, aufguss.Fields{"staerke": "1"})
	assert.True(t, errors.Is(err, aufguss.ErrNotFound))

	assert.Equal(t, models.ChangeUpdated, notifier.events[len(notifier.events)-1].Action)
}

func TestDeleteAufguss(t *testing.T) {
	svc, _, notifier := newAufgussService(t)
	ctx := context.Background()

	id, err := svc.CreateAufguss(ctx, aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAufguss(ctx, id))
	assert.ErrorIs(t, svc.DeleteAufguss(ctx, id), aufguss.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteAufguss(ctx, 999), aufguss.ErrNotFound)

	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, models.ChangeDeleted, last.Action)
	assert.Equal(t, id, last.AufgussID)
}

func TestListAufguessePlanWinsOverDate(t *testing.T) {
	svc, _, _ := newAufgussService(t)
	ctx := context.Background()

	_, err := svc.CreateAufguss(ctx, aufguss.Fields{"datum": "2024-01-10", "zeit_anfang": "10:00", "plan_name": "A"})
	require.NoError(t, err)
	_, err = svc.CreateAufguss(ctx, aufguss.Fields{"datum": "2024-01-11", "zeit_anfang": "10:00", "plan_name": "A"})
	require.NoError(t, err)
	_, err = svc.CreateAufguss(ctx, aufguss.Fields{"datum": "2024-01-11", "zeit_anfang": "11:00"})
	require.NoError(t, err)

	byDate, err := svc.ListAufguesse(ctx, "2024-01-11", nil)
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	planID := *byDate[0].PlanID
	byPlan, err := svc.ListAufguesse(ctx, "2024-01-11", &planID)
	require.NoError(t, err)
	assert.Len(t, byPlan, 2)
	assert.Equal(t, "2024-01-10", byPlan[0].Datum)
}

func TestNotifiersFanOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	n := aufguss.Notifiers{a, nil, b}

	n.AufguesseChanged(context.Background(), models.AufguesseChangedEvent{Action: models.ChangeDeleted, AufgussID: 3})
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, int64(3), b.events[0].AufgussID)
}
