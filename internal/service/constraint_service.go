package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

type constraintStore interface {
	Get(ctx context.Context, institutionID string) (*models.Constraints, error)
	Replace(ctx context.Context, institutionID string, constraints *models.Constraints) error
}

type constraintClassReader interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
}

type constraintSubjectReader interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
}

type constraintRoomReader interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
}

// ConstraintService owns the scheduling constraint aggregate: category
// updates are shallow merges, fixed-class pins are validated before they are
// admitted, and the whole document is persisted on every change.
type ConstraintService struct {
	store     constraintStore
	classes   constraintClassReader
	subjects  constraintSubjectReader
	rooms     constraintRoomReader
	slots     *TimeSlotService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConstraintService wires the constraint aggregate dependencies.
func NewConstraintService(
	store constraintStore,
	classes constraintClassReader,
	subjects constraintSubjectReader,
	rooms constraintRoomReader,
	slots *TimeSlotService,
	validate *validator.Validate,
	logger *zap.Logger,
) *ConstraintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{
		store:     store,
		classes:   classes,
		subjects:  subjects,
		rooms:     rooms,
		slots:     slots,
		validator: validate,
		logger:    logger,
	}
}

// Get returns the stored aggregate, creating the default document on first
// access.
func (s *ConstraintService) Get(ctx context.Context, institutionID string) (*models.Constraints, error) {
	constraints, err := s.store.Get(ctx, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultConstraints()
			defaults.UpdatedAt = time.Now().UTC()
			if err := s.store.Replace(ctx, institutionID, &defaults); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to initialise constraints")
			}
			return &defaults, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	return constraints, nil
}

// UpdateCategory replaces exactly one category of the aggregate, leaving the
// others untouched, then persists the whole document.
func (s *ConstraintService) UpdateCategory(ctx context.Context, institutionID string, category models.ConstraintCategory, payload json.RawMessage) (*models.Constraints, error) {
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown constraint category %q", category))
	}
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	switch category {
	case models.CategoryTimePreferences:
		var prefs models.TimePreferences
		if err := json.Unmarshal(payload, &prefs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time preferences payload")
		}
		if err := validateTimePreferences(prefs); err != nil {
			return nil, err
		}
		constraints.TimePreferences = prefs
	case models.CategoryFacultyPreferences:
		var prefs []models.FacultyPreference
		if err := json.Unmarshal(payload, &prefs); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty preferences payload")
		}
		seen := make(map[string]bool, len(prefs))
		for _, pref := range prefs {
			if pref.FacultyID == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "facultyId is required on every preference entry")
			}
			if seen[pref.FacultyID] {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate preference entry for faculty %s", pref.FacultyID))
			}
			seen[pref.FacultyID] = true
		}
		constraints.FacultyPreferences = prefs
	case models.CategoryFixedClasses:
		var fixed []models.FixedClassConstraint
		if err := json.Unmarshal(payload, &fixed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fixed classes payload")
		}
		if err := checkFixedCollisions(fixed); err != nil {
			return nil, err
		}
		constraints.FixedClasses = fixed
	case models.CategoryRoomResource:
		var rule models.RoomResourceConstraint
		if err := json.Unmarshal(payload, &rule); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room resource payload")
		}
		constraints.RoomResource = rule
	case models.CategoryStudentSection:
		var rule models.StudentSectionConstraint
		if err := json.Unmarshal(payload, &rule); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student section payload")
		}
		constraints.StudentSection = rule
	case models.CategoryAdvanced:
		var rule models.AdvancedConstraint
		if err := json.Unmarshal(payload, &rule); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid advanced constraints payload")
		}
		constraints.Advanced = rule
	case models.CategoryCustom:
		var custom []models.CustomConstraint
		if err := json.Unmarshal(payload, &custom); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid custom constraints payload")
		}
		constraints.CustomConstraints = custom
	}

	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist constraints")
	}
	return constraints, nil
}

// UpsertFacultyPreference replaces the entry matching the request's facultyId,
// appending when no entry exists.
func (s *ConstraintService) UpsertFacultyPreference(ctx context.Context, institutionID string, req dto.UpsertFacultyPreferenceRequest) (*models.Constraints, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty preference payload")
	}
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	entry := models.FacultyPreference{
		FacultyID:         req.FacultyID,
		Unavailability:    req.Unavailability,
		PreferredDays:     req.PreferredDays,
		DailyPreference:   req.DailyPreference,
		MaxConsecutive:    req.MaxConsecutive,
		PreferBackToBack:  req.PreferBackToBack,
		PreferOneHourGaps: req.PreferOneHourGaps,
	}

	replaced := false
	for i, pref := range constraints.FacultyPreferences {
		if pref.FacultyID == req.FacultyID {
			constraints.FacultyPreferences[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		constraints.FacultyPreferences = append(constraints.FacultyPreferences, entry)
	}

	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist faculty preference")
	}
	return constraints, nil
}

// AddFixedClass admits a new pin after checking entity references and the
// collision invariant. A rejected pin leaves the rest of the model untouched.
func (s *ConstraintService) AddFixedClass(ctx context.Context, institutionID string, req dto.AddFixedClassRequest) (*models.FixedClassConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fixed class payload")
	}
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	pin := models.FixedClassConstraint{
		ID:        uuid.NewString(),
		Day:       req.Day,
		TimeSlot:  req.TimeSlot,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		RoomID:    req.RoomID,
	}

	for _, existing := range constraints.FixedClasses {
		if existing.Day == pin.Day && existing.TimeSlot == pin.TimeSlot {
			if existing.ClassID == pin.ClassID {
				return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %s already has a pinned session on %s %s", pin.ClassID, pin.Day, pin.TimeSlot))
			}
			if existing.RoomID != nil && pin.RoomID != nil && *existing.RoomID == *pin.RoomID {
				return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s already pinned on %s %s", *pin.RoomID, pin.Day, pin.TimeSlot))
			}
		}
	}

	constraints.FixedClasses = append(constraints.FixedClasses, pin)
	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist fixed class")
	}
	return &pin, nil
}

// RemoveFixedClass deletes a pin by id.
func (s *ConstraintService) RemoveFixedClass(ctx context.Context, institutionID, pinID string) error {
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return err
	}
	kept := constraints.FixedClasses[:0]
	found := false
	for _, pin := range constraints.FixedClasses {
		if pin.ID == pinID {
			found = true
			continue
		}
		kept = append(kept, pin)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "fixed class not found")
	}
	constraints.FixedClasses = kept
	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist fixed class removal")
	}
	return nil
}

// CreateCustomConstraint stores a new opaque rule, active by default.
func (s *ConstraintService) CreateCustomConstraint(ctx context.Context, institutionID string, req dto.CreateCustomConstraintRequest) (*models.CustomConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid custom constraint payload")
	}
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority <= 0 {
		priority = 5
	}
	rule := models.CustomConstraint{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Type:        models.ConstraintStrength(req.Type),
		AppliedTo:   models.ConstraintTarget(req.AppliedTo),
		Priority:    priority,
		IsActive:    true,
	}
	constraints.CustomConstraints = append(constraints.CustomConstraints, rule)
	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist custom constraint")
	}
	return &rule, nil
}

// ToggleCustomConstraint flips a rule's active flag.
func (s *ConstraintService) ToggleCustomConstraint(ctx context.Context, institutionID, ruleID string, active bool) error {
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return err
	}
	for i, rule := range constraints.CustomConstraints {
		if rule.ID == ruleID {
			constraints.CustomConstraints[i].IsActive = active
			constraints.UpdatedAt = time.Now().UTC()
			if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist custom constraint toggle")
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "custom constraint not found")
}

// DeleteCustomConstraint removes a rule by id.
func (s *ConstraintService) DeleteCustomConstraint(ctx context.Context, institutionID, ruleID string) error {
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return err
	}
	kept := constraints.CustomConstraints[:0]
	found := false
	for _, rule := range constraints.CustomConstraints {
		if rule.ID == ruleID {
			found = true
			continue
		}
		kept = append(kept, rule)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "custom constraint not found")
	}
	constraints.CustomConstraints = kept
	constraints.UpdatedAt = time.Now().UTC()
	if err := s.store.Replace(ctx, institutionID, constraints); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist custom constraint removal")
	}
	return nil
}

// Validate runs the pre-generation checks: fixed entries must reference
// existing classes and subjects, impossible pairings are flagged (not
// dropped), and duplicate pins are reported. Unavailability entries that
// reference days or slots outside the current derived grid are tolerated.
func (s *ConstraintService) Validate(ctx context.Context, institutionID string) (*dto.ConstraintValidationReport, error) {
	constraints, err := s.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	classes, _, err := s.classes.List(ctx, models.ClassFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	subjects, _, err := s.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	classByID := make(map[string]models.Class, len(classes))
	for _, c := range classes {
		classByID[c.ID] = c
	}
	subjectByID := make(map[string]models.Subject, len(subjects))
	for _, sub := range subjects {
		subjectByID[sub.ID] = sub
	}

	report := &dto.ConstraintValidationReport{Valid: true}
	flag := func(category, ruleID, message string) {
		report.Valid = false
		report.Flags = append(report.Flags, dto.ValidationFlag{Category: category, RuleID: ruleID, Message: message})
	}

	seenClass := make(map[string]bool)
	seenRoom := make(map[string]bool)
	for _, pin := range constraints.FixedClasses {
		class, classOK := classByID[pin.ClassID]
		if !classOK {
			flag("fixedClasses", pin.ID, fmt.Sprintf("pinned class %s does not exist", pin.ClassID))
		}
		subject, subjectOK := subjectByID[pin.SubjectID]
		if !subjectOK {
			flag("fixedClasses", pin.ID, fmt.Sprintf("pinned subject %s does not exist", pin.SubjectID))
		}
		if classOK && subjectOK && !subject.TaughtIn(class) {
			flag("fixedClasses", pin.ID, fmt.Sprintf("subject %s is not taught in class %s", subject.Code, class.Name))
		}

		classKey := pin.ClassID + "|" + pin.Day + "|" + pin.TimeSlot
		if seenClass[classKey] {
			flag("fixedClasses", pin.ID, fmt.Sprintf("duplicate pin for class %s on %s %s", pin.ClassID, pin.Day, pin.TimeSlot))
		}
		seenClass[classKey] = true
		if pin.RoomID != nil {
			roomKey := *pin.RoomID + "|" + pin.Day + "|" + pin.TimeSlot
			if seenRoom[roomKey] {
				flag("fixedClasses", pin.ID, fmt.Sprintf("duplicate pin for room %s on %s %s", *pin.RoomID, pin.Day, pin.TimeSlot))
			}
			seenRoom[roomKey] = true
		}
	}

	return report, nil
}

// SanitizeUnavailability drops unavailability entries that no longer fall on
// the current working-day and slot grid. Stale entries are ignored, never an
// error: the grid may have changed since a preference was saved.
func SanitizeUnavailability(prefs []models.FacultyPreference, workingDays, slots []string) []models.FacultyPreference {
	daySet := make(map[string]bool, len(workingDays))
	for _, day := range workingDays {
		daySet[day] = true
	}
	slotSet := make(map[string]bool, len(slots))
	for _, slot := range slots {
		slotSet[slot] = true
	}

	result := make([]models.FacultyPreference, len(prefs))
	for i, pref := range prefs {
		clean := pref
		clean.Unavailability = nil
		for _, slot := range pref.Unavailability {
			if daySet[slot.Day] && slotSet[slot.TimeSlot] {
				clean.Unavailability = append(clean.Unavailability, slot)
			}
		}
		result[i] = clean
	}
	return result
}

func validateTimePreferences(prefs models.TimePreferences) error {
	start, okStart := parseClock(prefs.StartTime)
	end, okEnd := parseClock(prefs.EndTime)
	if !okStart || !okEnd {
		return appErrors.Clone(appErrors.ErrValidation, "startTime and endTime must be HH:MM")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "startTime must be before endTime")
	}
	if prefs.SlotDuration <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "slotDurationMinutes must be positive")
	}
	if prefs.LunchStartTime != "" {
		lunch, ok := parseClock(prefs.LunchStartTime)
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "lunchStartTime must be HH:MM")
		}
		if lunch < start || lunch >= end {
			return appErrors.Clone(appErrors.ErrValidation, "lunchStartTime must fall within the working day")
		}
	}
	for _, day := range prefs.WorkingDays {
		if !models.IsWeekday(day) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown working day %q", day))
		}
	}
	return nil
}

func checkFixedCollisions(fixed []models.FixedClassConstraint) error {
	seenClass := make(map[string]bool, len(fixed))
	seenRoom := make(map[string]bool, len(fixed))
	for _, pin := range fixed {
		classKey := pin.ClassID + "|" + pin.Day + "|" + pin.TimeSlot
		if seenClass[classKey] {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %s pinned twice on %s %s", pin.ClassID, pin.Day, pin.TimeSlot))
		}
		seenClass[classKey] = true
		if pin.RoomID != nil {
			roomKey := *pin.RoomID + "|" + pin.Day + "|" + pin.TimeSlot
			if seenRoom[roomKey] {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s pinned twice on %s %s", *pin.RoomID, pin.Day, pin.TimeSlot))
			}
			seenRoom[roomKey] = true
		}
	}
	return nil
}
