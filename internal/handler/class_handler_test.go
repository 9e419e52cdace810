package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
	"github.com/rohitbihal/smart-classroom-api/internal/service"
	"github.com/rohitbihal/smart-classroom-api/pkg/response"
)

type classRepoMock struct {
	classes []models.Class
}

func (m *classRepoMock) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	return m.classes, len(m.classes), nil
}

func (m *classRepoMock) FindByID(ctx context.Context, id string) (*models.Class, error) {
	for i := range m.classes {
		if m.classes[i].ID == id {
			return &m.classes[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *classRepoMock) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return false, nil
}

func (m *classRepoMock) Create(ctx context.Context, class *models.Class) error {
	m.classes = append(m.classes, *class)
	return nil
}

func (m *classRepoMock) Update(ctx context.Context, class *models.Class) error { return nil }

func (m *classRepoMock) Delete(ctx context.Context, id string) error { return nil }

func newClassHandlerForTest(repo *classRepoMock) *ClassHandler {
	return NewClassHandler(service.NewClassService(repo, nil, nil))
}

func TestClassHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newClassHandlerForTest(&classRepoMock{classes: []models.Class{
		{ID: "class-1", Name: "CSE-2-A", Branch: "CSE", Year: 2, Section: "A", StudentCount: 60},
	}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes?branch=CSE&page=1&limit=10", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestClassHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newClassHandlerForTest(&classRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes/ghost", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newClassHandlerForTest(&classRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &classRepoMock{}
	handler := newClassHandlerForTest(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.CreateClassRequest{
		Name:         "CSE-3-B",
		Branch:       "CSE",
		Year:         3,
		Section:      "B",
		StudentCount: 55,
	})
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.classes, 1)
	assert.NotEmpty(t, repo.classes[0].ID)
}
