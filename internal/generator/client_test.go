package generator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	"github.com/rohitbihal/smart-classroom-api/pkg/config"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(config.GeneratorConfig{BaseURL: url}, nil)
}

func TestGenerateDecodesEntryArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"day":"Monday","time":"09:00-10:00","className":"CSE-3A","subject":"Algorithms","faculty":"A. Rao","room":"101","type":"theory"}]`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Generate(context.Background(), dto.GenerationRequest{})
	require.NoError(t, err)
	require.Len(t, result.Timetable, 1)
	assert.Equal(t, models.SessionTheory, result.Timetable[0].Type, "lowercase session type must be normalized")
	assert.Equal(t, models.EntryRegular, result.Timetable[0].ClassType)
}

func TestGenerateDecodesResultObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"timetable":[{"day":"Monday","time":"09:00-10:00","className":"CSE-3A","subject":"OS Lab","faculty":"B. Iyer","room":"Lab-2","type":"Lab","classType":"fixed"}],"unscheduled":[{"className":"CSE-3B","subject":"DBMS","reason":"no free lab"}]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Generate(context.Background(), dto.GenerationRequest{})
	require.NoError(t, err)
	require.Len(t, result.Timetable, 1)
	assert.Equal(t, models.EntryFixed, result.Timetable[0].ClassType)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "no free lab", result.Unscheduled[0].Reason)
}

func TestGenerateSurfacesEngineErrorVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("constraints are unsatisfiable: faculty overloaded"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), dto.GenerationRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGeneration.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "faculty overloaded")
}

func TestGenerateRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), dto.GenerationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGeneration.Code, appErrors.FromError(err).Code)
}
