package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_DefaultsToRest(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "rest@example.com")

	rr := ts.do(t, http.MethodGet, "/api/weekly-workout/", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	var types map[string]string
	decode(t, rr, &types)
	assert.Len(t, types, 7)
	for day, typ := range types {
		assert.Equal(t, "Rest", typ, day)
	}

	rr = ts.do(t, http.MethodGet, "/api/weekly-workout/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSchedule_SetTypeAndExercises(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t, 3)
	token := ts.login(t, "planner@example.com")

	rr := ts.do(t, http.MethodPut, "/api/weekly-workout/monday", SetDayTypeRequest{Type: "Push"}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var day WorkoutDayResponse
	decode(t, rr, &day)
	assert.Equal(t, "Monday", day.Day)
	assert.Equal(t, "Push", day.Type)
	assert.Empty(t, day.Exercises)

	for _, id := range []string{"0002", "0001", "0002"} {
		rr = ts.do(t, http.MethodPost, "/api/weekly-workout/Monday/exercises", AddScheduledExerciseRequest{ExerciseID: id}, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	var exercises []ExerciseResponse
	decode(t, rr, &exercises)
	require.Len(t, exercises, 2)
	assert.Equal(t, "0002", exercises[0].ID)
	assert.Equal(t, "0001", exercises[1].ID)

	rr = ts.do(t, http.MethodDelete, "/api/weekly-workout/MONDAY/exercises/0002", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &exercises)
	require.Len(t, exercises, 1)
	assert.Equal(t, "0001", exercises[0].ID)

	rr = ts.do(t, http.MethodGet, "/api/weekly-workout/monday/exercises", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &exercises)
	assert.Len(t, exercises, 1)

	rr = ts.do(t, http.MethodGet, "/api/weekly-workout/", nil, token)
	var types map[string]string
	decode(t, rr, &types)
	assert.Equal(t, "Push", types["Monday"])
	assert.Equal(t, "Rest", types["Tuesday"])
}

func TestSchedule_Errors(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.seedCatalog(t, 1)
	token := ts.login(t, "oops@example.com")

	rr := ts.do(t, http.MethodPut, "/api/weekly-workout/funday", SetDayTypeRequest{Type: "Push"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeValidationFailed, errorCode(t, rr))

	rr = ts.do(t, http.MethodGet, "/api/weekly-workout/someday/exercises", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/weekly-workout/friday/exercises", AddScheduledExerciseRequest{ExerciseID: "9999"}, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, rr))

	rr = ts.do(t, http.MethodPut, "/api/weekly-workout/friday", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
