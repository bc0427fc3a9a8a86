package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeOmitsEmptyFields(t *testing.T) {
	body, err := json.Marshal(APIResponse{Success: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(body))

	body, err = json.Marshal(ErrorResponse("Aufguss nicht gefunden"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Aufguss nicht gefunden"}`, string(body))

	body, err = json.Marshal(EditError("Invalid field"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Invalid field"}`, string(body))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusCreated, SuccessResponse("ok", map[string]int{"aufguss_id": 4})))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"ok","data":{"aufguss_id":4}}`, rec.Body.String())
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, m)

	m, err = ParseClock(" 23:59:00 ")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, m)

	m, err = ParseClock("24:05:00")
	require.NoError(t, err)
	assert.Equal(t, 24*60+5, m)

	for _, bad := range []string{"", "8", "08:7", "08:60", "-1:00", "ab:cd", "08:30:00:00"} {
		_, err = ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatClockKeepsCountingPastMidnight(t *testing.T) {
	assert.Equal(t, "08:30:00", FormatClock(510))
	assert.Equal(t, "24:05:00", FormatClock(24*60+5))

	end, err := ParseClock(FormatClock(23*60 + 50 + 15))
	require.NoError(t, err)
	assert.Greater(t, end, 23*60+50)
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, 1, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10", Today(now, loc))
}
