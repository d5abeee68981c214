package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebdray/storywalk/pkg/progression"
)

func TestProgressHandler_Snapshot(t *testing.T) {
	mock, service := newTestEnv()
	handler := NewProgressHandler(service, testLogger())

	mock.Seed(progression.KeyTicketsBalance, "15")
	mock.Seed(progression.KeySolvedPuzzles, `{"main_1":true,"extra_1":true}`)
	mock.Seed(progression.KeyUnlockedExtras, `{"xw_extra_1":true}`)
	mock.Seed(progression.KeyUnlockedStories, `{"8":true}`)

	req := httptest.NewRequest(http.MethodGet, "/v1/progress", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap progression.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 15, snap.Balance)
	assert.Equal(t, []string{"extra_1", "main_1"}, snap.Solved)
	assert.Equal(t, []string{"xw_extra_1"}, snap.UnlockedExtras)
	assert.Equal(t, []string{"8"}, snap.UnlockedStories)
}

func TestProgressHandler_Reset(t *testing.T) {
	mock, service := newTestEnv()
	handler := NewProgressHandler(service, testLogger())

	mock.Seed(progression.KeyTicketsBalance, "25")
	mock.Seed(progression.KeySolvedPuzzles, `{"main_1":true}`)
	mock.Seed(progression.KeyUnlockedStories, `{"8":true}`)
	mock.Seed(progression.KeyTicketsIntroSeen, "true")

	req := httptest.NewRequest(http.MethodPost, "/v1/progress/reset", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap progression.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.Balance)
	assert.Empty(t, snap.Solved)
	assert.Empty(t, snap.UnlockedStories)

	_, ok := mock.Value(progression.KeyTicketsIntroSeen)
	assert.False(t, ok, "reset clears preference keys too")
}

func TestProgressHandler_MethodNotAllowed(t *testing.T) {
	_, service := newTestEnv()
	handler := NewProgressHandler(service, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/progress", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
