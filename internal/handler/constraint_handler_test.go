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

type constraintStoreMock struct {
	docs map[string]*models.Constraints
}

func (m *constraintStoreMock) Get(ctx context.Context, institutionID string) (*models.Constraints, error) {
	doc, ok := m.docs[institutionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

func (m *constraintStoreMock) Replace(ctx context.Context, institutionID string, constraints *models.Constraints) error {
	if m.docs == nil {
		m.docs = make(map[string]*models.Constraints)
	}
	copied := *constraints
	m.docs[institutionID] = &copied
	return nil
}

type emptySubjectRepoMock struct{}

func (emptySubjectRepoMock) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	return nil, 0, nil
}

type emptyRoomRepoMock struct{}

func (emptyRoomRepoMock) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	return nil, 0, nil
}

func newConstraintHandlerForTest(store *constraintStoreMock) *ConstraintHandler {
	svc := service.NewConstraintService(
		store,
		&classRepoMock{},
		emptySubjectRepoMock{},
		emptyRoomRepoMock{},
		service.NewTimeSlotService(nil, nil),
		nil,
		nil,
	)
	return NewConstraintHandler(svc, "inst-default")
}

func TestConstraintHandlerGetSeedsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &constraintStoreMock{}
	handler := newConstraintHandlerForTest(store)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/constraints", nil)
	c.Request = req

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, store.docs, "inst-default")

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestConstraintHandlerUpdateCategoryUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newConstraintHandlerForTest(&constraintStoreMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/constraints/bogus", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "category", Value: "bogus"}}

	handler.UpdateCategory(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConstraintHandlerAddFixedClassInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newConstraintHandlerForTest(&constraintStoreMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/constraints/fixed-classes", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.AddFixedClass(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
