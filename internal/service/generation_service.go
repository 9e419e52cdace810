package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/generator"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

type generationClassReader interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
}

type generationFacultyReader interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
}

type generationSubjectReader interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
}

type generationRoomReader interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
}

type timetableWriter interface {
	ReplaceAll(ctx context.Context, institutionID string, entries []models.TimetableEntry, unscheduled []models.UnscheduledSession) error
	ListAll(ctx context.Context, institutionID string) ([]models.TimetableEntry, error)
	ListUnscheduled(ctx context.Context, institutionID string) ([]models.UnscheduledSession, error)
}

type constraintProvider interface {
	Get(ctx context.Context, institutionID string) (*models.Constraints, error)
	Validate(ctx context.Context, institutionID string) (*dto.ConstraintValidationReport, error)
}

// GenerationService assembles the constraint payload, delegates the actual
// assignment to the external engine and persists the result. It performs no
// feasibility search of its own.
type GenerationService struct {
	classes     generationClassReader
	faculty     generationFacultyReader
	subjects    generationSubjectReader
	rooms       generationRoomReader
	timetables  timetableWriter
	constraints constraintProvider
	slots       *TimeSlotService
	engine      generator.Client
	metrics     *MetricsService
	cache       *CacheService
	logger      *zap.Logger
}

// NewGenerationService wires the generation pipeline.
func NewGenerationService(
	classes generationClassReader,
	faculty generationFacultyReader,
	subjects generationSubjectReader,
	rooms generationRoomReader,
	timetables timetableWriter,
	constraints constraintProvider,
	slots *TimeSlotService,
	engine generator.Client,
	metrics *MetricsService,
	cache *CacheService,
	logger *zap.Logger,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		classes:     classes,
		faculty:     faculty,
		subjects:    subjects,
		rooms:       rooms,
		timetables:  timetables,
		constraints: constraints,
		slots:       slots,
		engine:      engine,
		metrics:     metrics,
		cache:       cache,
		logger:      logger,
	}
}

// BuildRequest shapes entity lists and the constraint aggregate into the
// generator payload. Pure transformation: faculty ids on subjects are
// denormalized to names, the derived slot grid is attached, and stale
// unavailability entries are dropped from the payload copy. Missing
// prerequisites are configuration errors; generation is not attempted.
func (s *GenerationService) BuildRequest(
	classes []models.Class,
	faculty []models.Faculty,
	subjects []models.Subject,
	rooms []models.Room,
	constraints *models.Constraints,
) (*dto.GenerationRequest, error) {
	if constraints == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "constraints are not configured")
	}
	timeSlots := s.slots.DeriveSlots(constraints.TimePreferences)
	if len(timeSlots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "time preferences are not configured")
	}
	if len(classes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no classes defined")
	}
	if len(faculty) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no faculty defined")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no subjects defined")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms defined")
	}

	facultyNameByID := make(map[string]string, len(faculty))
	for _, f := range faculty {
		facultyNameByID[f.ID] = f.Name
	}

	genSubjects := make([]dto.GenerationSubject, 0, len(subjects))
	for _, subject := range subjects {
		entry := dto.GenerationSubject{
			ID:           subject.ID,
			Code:         subject.Code,
			Name:         subject.Name,
			Department:   subject.Department,
			Type:         subject.Type,
			HoursPerWeek: subject.HoursPerWeek,
		}
		if subject.AssignedFacultyID != nil {
			entry.FacultyName = facultyNameByID[*subject.AssignedFacultyID]
		}
		genSubjects = append(genSubjects, entry)
	}

	payload := *constraints
	payload.FacultyPreferences = SanitizeUnavailability(
		constraints.FacultyPreferences,
		constraints.TimePreferences.WorkingDays,
		timeSlots,
	)
	active := payload.CustomConstraints[:0:0]
	for _, rule := range payload.CustomConstraints {
		if rule.IsActive {
			active = append(active, rule)
		}
	}
	payload.CustomConstraints = active

	return &dto.GenerationRequest{
		Classes:     classes,
		Faculty:     faculty,
		Subjects:    genSubjects,
		Rooms:       rooms,
		Constraints: payload,
		TimeSlots:   timeSlots,
	}, nil
}

// Generate snapshots the current entities and constraints, invokes the engine
// once and persists the resulting timetable. A failed generation leaves the
// previously stored timetable untouched. Concurrent constraint edits are not
// synchronized against an in-flight call; the snapshot taken here is what the
// engine sees.
func (s *GenerationService) Generate(ctx context.Context, institutionID string) (*dto.GenerateTimetableResponse, error) {
	constraints, err := s.constraints.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	validation, err := s.constraints.Validate(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	classes, _, err := s.classes.List(ctx, models.ClassFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	faculty, _, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	subjects, _, err := s.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	request, err := s.BuildRequest(classes, faculty, subjects, rooms, constraints)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.engine.Generate(ctx, *request)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGeneration("failure", time.Since(start))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration("success", time.Since(start))
	}

	if err := s.timetables.ReplaceAll(ctx, institutionID, result.Timetable, result.Unscheduled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "analytics:"+institutionID+":*")
	}

	status := models.TimetableComplete
	if len(result.Unscheduled) > 0 {
		status = models.TimetablePartial
	}
	s.logger.Info("timetable generated",
		zap.String("institution", institutionID),
		zap.Int("entries", len(result.Timetable)),
		zap.Int("unscheduled", len(result.Unscheduled)),
	)

	return &dto.GenerateTimetableResponse{
		Status:      status,
		Entries:     result.Timetable,
		Unscheduled: result.Unscheduled,
		Flags:       validation.Flags,
	}, nil
}

// Current returns the stored timetable with its status. An empty store is the
// distinct not-generated state, not a fully scheduled one.
func (s *GenerationService) Current(ctx context.Context, institutionID string) (*models.TimetableOverview, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	unscheduled, err := s.timetables.ListUnscheduled(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unscheduled sessions")
	}

	overview := &models.TimetableOverview{
		EntryCount:  len(entries),
		Entries:     entries,
		Unscheduled: unscheduled,
	}
	switch {
	case len(entries) == 0:
		overview.Status = models.TimetableNotGenerated
	case len(unscheduled) > 0:
		overview.Status = models.TimetablePartial
	default:
		overview.Status = models.TimetableComplete
	}
	return overview, nil
}
