package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

type stubConstraintStore struct {
	docs       map[string]*models.Constraints
	replaceErr error
}

func newStubConstraintStore() *stubConstraintStore {
	return &stubConstraintStore{docs: make(map[string]*models.Constraints)}
}

func (s *stubConstraintStore) Get(_ context.Context, institutionID string) (*models.Constraints, error) {
	doc, ok := s.docs[institutionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return doc, nil
}

func (s *stubConstraintStore) Replace(_ context.Context, institutionID string, constraints *models.Constraints) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	copied := *constraints
	s.docs[institutionID] = &copied
	return nil
}

type stubClassReader struct{ classes []models.Class }

func (s *stubClassReader) List(context.Context, models.ClassFilter) ([]models.Class, int, error) {
	return s.classes, len(s.classes), nil
}

type stubSubjectReader struct{ subjects []models.Subject }

func (s *stubSubjectReader) List(context.Context, models.SubjectFilter) ([]models.Subject, int, error) {
	return s.subjects, len(s.subjects), nil
}

type stubRoomReader struct{ rooms []models.Room }

func (s *stubRoomReader) List(context.Context, models.RoomFilter) ([]models.Room, int, error) {
	return s.rooms, len(s.rooms), nil
}

func newConstraintServiceForTest(store *stubConstraintStore, classes []models.Class, subjects []models.Subject) *ConstraintService {
	return NewConstraintService(
		store,
		&stubClassReader{classes: classes},
		&stubSubjectReader{subjects: subjects},
		&stubRoomReader{},
		NewTimeSlotService(nil, nil),
		nil,
		nil,
	)
}

func TestConstraintServiceGetInitialisesDefaults(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)

	constraints, err := svc.Get(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", constraints.TimePreferences.StartTime)
	assert.Equal(t, "17:00", constraints.TimePreferences.EndTime)
	assert.Len(t, constraints.TimePreferences.WorkingDays, 5)
	assert.Empty(t, constraints.FixedClasses)

	// The defaults are persisted on first read.
	_, ok := store.docs["inst-1"]
	assert.True(t, ok)
}

func TestConstraintServiceUpdateCategory(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)

	payload, err := json.Marshal(models.TimePreferences{
		WorkingDays:  []string{"Monday", "Tuesday"},
		StartTime:    "08:00",
		EndTime:      "14:00",
		SlotDuration: 60,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(context.Background(), "inst-1", models.CategoryTimePreferences, payload)
	require.NoError(t, err)
	assert.Equal(t, "08:00", updated.TimePreferences.StartTime)
	// The other categories keep their previous values.
	assert.Empty(t, updated.FixedClasses)
	assert.Empty(t, updated.CustomConstraints)
}

func TestConstraintServiceUpdateCategoryRejectsUnknown(t *testing.T) {
	svc := newConstraintServiceForTest(newStubConstraintStore(), nil, nil)

	_, err := svc.UpdateCategory(context.Background(), "inst-1", "holidays", json.RawMessage(`{}`))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestConstraintServiceUpdateCategoryValidatesTimePreferences(t *testing.T) {
	svc := newConstraintServiceForTest(newStubConstraintStore(), nil, nil)

	tests := []struct {
		name  string
		prefs models.TimePreferences
	}{
		{"start after end", models.TimePreferences{StartTime: "17:00", EndTime: "09:00", SlotDuration: 60}},
		{"zero slot duration", models.TimePreferences{StartTime: "09:00", EndTime: "17:00"}},
		{"lunch outside day", models.TimePreferences{StartTime: "09:00", EndTime: "17:00", LunchStartTime: "18:00", SlotDuration: 60}},
		{"unknown working day", models.TimePreferences{StartTime: "09:00", EndTime: "17:00", SlotDuration: 60, WorkingDays: []string{"Funday"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.prefs)
			require.NoError(t, err)
			_, err = svc.UpdateCategory(context.Background(), "inst-1", models.CategoryTimePreferences, payload)
			assert.Error(t, err)
		})
	}
}

func TestConstraintServiceUpsertFacultyPreference(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)

	first, err := svc.UpsertFacultyPreference(context.Background(), "inst-1", dto.UpsertFacultyPreferenceRequest{
		FacultyID:       "fac-1",
		DailyPreference: models.PreferMorning,
	})
	require.NoError(t, err)
	require.Len(t, first.FacultyPreferences, 1)

	// A second upsert for the same faculty replaces, never duplicates.
	second, err := svc.UpsertFacultyPreference(context.Background(), "inst-1", dto.UpsertFacultyPreferenceRequest{
		FacultyID:       "fac-1",
		DailyPreference: models.PreferAfternoon,
	})
	require.NoError(t, err)
	require.Len(t, second.FacultyPreferences, 1)
	assert.Equal(t, models.PreferAfternoon, second.FacultyPreferences[0].DailyPreference)

	third, err := svc.UpsertFacultyPreference(context.Background(), "inst-1", dto.UpsertFacultyPreferenceRequest{
		FacultyID: "fac-2",
	})
	require.NoError(t, err)
	assert.Len(t, third.FacultyPreferences, 2)
}

func TestConstraintServiceAddFixedClassConflicts(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)
	room := "room-1"

	_, err := svc.AddFixedClass(context.Background(), "inst-1", dto.AddFixedClassRequest{
		Day: "Monday", TimeSlot: "09:00-10:00", ClassID: "class-1", SubjectID: "sub-1", RoomID: &room,
	})
	require.NoError(t, err)

	// Same class, same cell.
	_, err = svc.AddFixedClass(context.Background(), "inst-1", dto.AddFixedClassRequest{
		Day: "Monday", TimeSlot: "09:00-10:00", ClassID: "class-1", SubjectID: "sub-2",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	// Different class but the same pinned room.
	_, err = svc.AddFixedClass(context.Background(), "inst-1", dto.AddFixedClassRequest{
		Day: "Monday", TimeSlot: "09:00-10:00", ClassID: "class-2", SubjectID: "sub-2", RoomID: &room,
	})
	require.Error(t, err)

	// A rejected pin must not have been persisted.
	doc := store.docs["inst-1"]
	assert.Len(t, doc.FixedClasses, 1)

	// Different slot is fine.
	_, err = svc.AddFixedClass(context.Background(), "inst-1", dto.AddFixedClassRequest{
		Day: "Monday", TimeSlot: "10:00-11:00", ClassID: "class-1", SubjectID: "sub-1", RoomID: &room,
	})
	assert.NoError(t, err)
}

func TestConstraintServiceRemoveFixedClass(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)

	pin, err := svc.AddFixedClass(context.Background(), "inst-1", dto.AddFixedClassRequest{
		Day: "Tuesday", TimeSlot: "09:00-10:00", ClassID: "class-1", SubjectID: "sub-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFixedClass(context.Background(), "inst-1", pin.ID))
	assert.Empty(t, store.docs["inst-1"].FixedClasses)

	err = svc.RemoveFixedClass(context.Background(), "inst-1", pin.ID)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestConstraintServiceCustomConstraintLifecycle(t *testing.T) {
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, nil, nil)

	rule, err := svc.CreateCustomConstraint(context.Background(), "inst-1", dto.CreateCustomConstraintRequest{
		Name:        "No late labs",
		Description: "Lab sessions must not start after 15:00",
		Type:        "Soft",
		AppliedTo:   "TimeSlot",
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.Equal(t, 5, rule.Priority)

	require.NoError(t, svc.ToggleCustomConstraint(context.Background(), "inst-1", rule.ID, false))
	assert.False(t, store.docs["inst-1"].CustomConstraints[0].IsActive)

	require.NoError(t, svc.DeleteCustomConstraint(context.Background(), "inst-1", rule.ID))
	assert.Empty(t, store.docs["inst-1"].CustomConstraints)

	err = svc.ToggleCustomConstraint(context.Background(), "inst-1", rule.ID, true)
	assert.Error(t, err)
}

func TestConstraintServiceValidate(t *testing.T) {
	classes := []models.Class{
		{ID: "class-1", Name: "CSE-2-A", Branch: "CSE", Year: 2},
	}
	subjects := []models.Subject{
		{ID: "sub-1", Code: "CS201", Department: "CSE", Year: 2},
		{ID: "sub-2", Code: "ME101", Department: "ME", Year: 1},
	}
	store := newStubConstraintStore()
	svc := newConstraintServiceForTest(store, classes, subjects)

	doc := models.DefaultConstraints()
	doc.FixedClasses = []models.FixedClassConstraint{
		{ID: "pin-1", Day: "Monday", TimeSlot: "09:00-10:00", ClassID: "class-1", SubjectID: "sub-1"},
		{ID: "pin-2", Day: "Monday", TimeSlot: "10:00-11:00", ClassID: "ghost", SubjectID: "sub-1"},
		{ID: "pin-3", Day: "Monday", TimeSlot: "11:00-12:00", ClassID: "class-1", SubjectID: "sub-2"},
		{ID: "pin-4", Day: "Monday", TimeSlot: "09:00-10:00", ClassID: "class-1", SubjectID: "sub-1"},
	}
	require.NoError(t, store.Replace(context.Background(), "inst-1", &doc))

	report, err := svc.Validate(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.False(t, report.Valid)

	byRule := make(map[string][]string)
	for _, flag := range report.Flags {
		byRule[flag.RuleID] = append(byRule[flag.RuleID], flag.Message)
	}
	assert.Empty(t, byRule["pin-1"])
	assert.Len(t, byRule["pin-2"], 1)
	// Impossible pairings are flagged, not dropped.
	assert.Len(t, byRule["pin-3"], 1)
	assert.Len(t, byRule["pin-4"], 1)
}

func TestSanitizeUnavailability(t *testing.T) {
	prefs := []models.FacultyPreference{
		{
			FacultyID: "fac-1",
			Unavailability: []models.UnavailabilitySlot{
				{Day: "Monday", TimeSlot: "09:00-10:00"},
				{Day: "Sunday", TimeSlot: "09:00-10:00"},
				{Day: "Monday", TimeSlot: "07:00-08:00"},
			},
		},
	}

	clean := SanitizeUnavailability(prefs, []string{"Monday", "Tuesday"}, []string{"09:00-10:00", "10:00-11:00"})
	require.Len(t, clean, 1)
	require.Len(t, clean[0].Unavailability, 1)
	assert.Equal(t, "Monday", clean[0].Unavailability[0].Day)

	// The input slice is left untouched.
	assert.Len(t, prefs[0].Unavailability, 3)
}
