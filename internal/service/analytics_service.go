package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
)

type analyticsTimetableReader interface {
	ListAll(ctx context.Context, institutionID string) ([]models.TimetableEntry, error)
	ListUnscheduled(ctx context.Context, institutionID string) ([]models.UnscheduledSession, error)
}

type analyticsFacultyReader interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
}

type analyticsRoomReader interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
}

type analyticsClassReader interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
}

type analyticsConstraintReader interface {
	Get(ctx context.Context, institutionID string) (*models.Constraints, error)
}

// AnalyticsService turns a generated timetable into availability grids,
// utilization figures and conflict reports. Every computation is a pure
// read over the immutable entry list; Redis only caches results.
type AnalyticsService struct {
	timetables  analyticsTimetableReader
	faculty     analyticsFacultyReader
	rooms       analyticsRoomReader
	classes     analyticsClassReader
	constraints analyticsConstraintReader
	slots       *TimeSlotService
	cache       *CacheService
	logger      *zap.Logger
}

// NewAnalyticsService constructs the analytics layer.
func NewAnalyticsService(
	timetables analyticsTimetableReader,
	faculty analyticsFacultyReader,
	rooms analyticsRoomReader,
	classes analyticsClassReader,
	constraints analyticsConstraintReader,
	slots *TimeSlotService,
	cache *CacheService,
	logger *zap.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		timetables:  timetables,
		faculty:     faculty,
		rooms:       rooms,
		classes:     classes,
		constraints: constraints,
		slots:       slots,
		cache:       cache,
		logger:      logger,
	}
}

// RoomAvailability builds the (room, slot) occupancy grid for one day.
// Duplicate cell claims are generator-side conflicts: the grid shows the
// last writer and counts every extra claimant.
func (s *AnalyticsService) RoomAvailability(ctx context.Context, institutionID, day string, roomNumbers []string) (*models.RoomAvailabilityGrid, error) {
	if !models.IsWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	constraints, err := s.constraints.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	slots := s.slots.DeriveSlotsCached(ctx, institutionID, constraints.TimePreferences)

	wanted := make(map[string]bool, len(roomNumbers))
	for _, number := range roomNumbers {
		wanted[number] = true
	}

	grid := &models.RoomAvailabilityGrid{
		Day:   day,
		Slots: slots,
		Rooms: make(map[string]map[string]models.RoomAvailabilityCell),
	}
	for _, room := range rooms {
		if len(wanted) > 0 && !wanted[room.Number] {
			continue
		}
		grid.Rooms[room.Number] = make(map[string]models.RoomAvailabilityCell, len(slots))
	}

	occupants := make(map[string][]models.TimetableEntry)
	for _, entry := range entries {
		if entry.Day != day {
			continue
		}
		cells, tracked := grid.Rooms[entry.Room]
		if !tracked {
			continue
		}
		key := entry.Room + "|" + entry.Time
		occupants[key] = append(occupants[key], entry)
		cells[entry.Time] = models.RoomAvailabilityCell{
			Occupant:      entry.ClassName,
			SessionType:   string(entry.Type),
			ConflictCount: len(occupants[key]) - 1,
		}
	}

	for _, claimed := range occupants {
		if len(claimed) < 2 {
			continue
		}
		grid.ConflictTotal += len(claimed) - 1
		grid.Conflicts = append(grid.Conflicts, models.RoomConflict{
			Room:    claimed[0].Room,
			Day:     day,
			Time:    claimed[0].Time,
			Entries: claimed,
		})
	}
	sort.Slice(grid.Conflicts, func(i, j int) bool {
		if grid.Conflicts[i].Room == grid.Conflicts[j].Room {
			return grid.Conflicts[i].Time < grid.Conflicts[j].Time
		}
		return grid.Conflicts[i].Room < grid.Conflicts[j].Room
	})
	return grid, nil
}

// FacultyWorkload computes scheduled hours and utilization per faculty member.
// Matching is by display name because the generator output carries names;
// unresolved names are reported by Reconcile, not here.
func (s *AnalyticsService) FacultyWorkload(ctx context.Context, institutionID string) ([]models.FacultyWorkload, error) {
	cacheKey := "analytics:" + institutionID + ":workload"
	var cached []models.FacultyWorkload
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	faculty, _, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	hoursByName := make(map[string]int)
	for _, entry := range entries {
		hoursByName[entry.Faculty]++
	}

	workloads := make([]models.FacultyWorkload, 0, len(faculty))
	for _, member := range faculty {
		scheduled := hoursByName[member.Name]
		utilization := 0.0
		if member.MaxWorkload > 0 {
			utilization = float64(scheduled) / float64(member.MaxWorkload) * 100
		}
		workloads = append(workloads, models.FacultyWorkload{
			FacultyID:      member.ID,
			FacultyName:    member.Name,
			Department:     member.Department,
			ScheduledHours: scheduled,
			MaxWorkload:    member.MaxWorkload,
			Utilization:    utilization,
			OverAllocated:  utilization > 100,
		})
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, workloads, 0)
	}
	return workloads, nil
}

// RoomUtilization reports booked slots against the weekly capacity of each
// room (working days x slots per day).
func (s *AnalyticsService) RoomUtilization(ctx context.Context, institutionID string) ([]models.RoomUsage, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	constraints, err := s.constraints.Get(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	slotsPerDay := s.slots.SlotsPerDay(constraints.TimePreferences)
	weeklyCapacity := len(constraints.TimePreferences.WorkingDays) * slotsPerDay

	slotsByRoom := make(map[string]int)
	for _, entry := range entries {
		slotsByRoom[entry.Room]++
	}

	usages := make([]models.RoomUsage, 0, len(rooms))
	for _, room := range rooms {
		scheduled := slotsByRoom[room.Number]
		utilization := 0.0
		if weeklyCapacity > 0 {
			utilization = float64(scheduled) / float64(weeklyCapacity) * 100
		}
		usages = append(usages, models.RoomUsage{
			RoomID:         room.ID,
			RoomNumber:     room.Number,
			Building:       room.Building,
			ScheduledSlots: scheduled,
			AvailableSlots: weeklyCapacity,
			Utilization:    utilization,
		})
	}
	return usages, nil
}

// EquipmentUtilization reports, per capability, the share of all scheduled
// hours held in rooms carrying that capability. Computer systems count only
// when the nested available flag is set, regardless of machine count.
func (s *AnalyticsService) EquipmentUtilization(ctx context.Context, institutionID string) ([]models.EquipmentUsage, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	roomByNumber := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		roomByNumber[room.Number] = room
	}

	capabilities := []struct {
		name string
		has  func(models.RoomEquipment) bool
	}{
		{"projector", func(e models.RoomEquipment) bool { return e.Projector }},
		{"smartBoard", func(e models.RoomEquipment) bool { return e.SmartBoard }},
		{"ac", func(e models.RoomEquipment) bool { return e.AirConditioning }},
		{"audioSystem", func(e models.RoomEquipment) bool { return e.AudioSystem }},
		{"computerSystems", func(e models.RoomEquipment) bool { return e.ComputerSystems.Available }},
	}

	total := len(entries)
	booked := make(map[string]int, len(capabilities))
	for _, entry := range entries {
		room, ok := roomByNumber[entry.Room]
		if !ok {
			continue
		}
		for _, capability := range capabilities {
			if capability.has(room.Equipment) {
				booked[capability.name]++
			}
		}
	}

	usages := make([]models.EquipmentUsage, 0, len(capabilities))
	for _, capability := range capabilities {
		utilization := 0.0
		if total > 0 {
			utilization = float64(booked[capability.name]) / float64(total) * 100
		}
		usages = append(usages, models.EquipmentUsage{
			Equipment:   capability.name,
			BookedHours: booked[capability.name],
			TotalHours:  total,
			Utilization: utilization,
		})
	}
	return usages, nil
}

// UnscheduledReport reports the sessions the last generation run could not
// place. A generated timetable with nothing unscheduled is the explicit
// fully-scheduled state; no generation at all is an error.
func (s *AnalyticsService) UnscheduledReport(ctx context.Context, institutionID string) (*models.UnscheduledReport, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if len(entries) == 0 {
		return nil, appErrors.ErrNotGenerated
	}
	sessions, err := s.timetables.ListUnscheduled(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unscheduled sessions")
	}
	report := BuildUnscheduledReport(sessions)
	return &report, nil
}

// BuildUnscheduledReport wraps the generator's unscheduled sessions so that an
// empty list on a generated timetable is an explicit success state.
func BuildUnscheduledReport(sessions []models.UnscheduledSession) models.UnscheduledReport {
	if len(sessions) == 0 {
		return models.UnscheduledReport{FullyScheduled: true, Sessions: []models.UnscheduledSession{}}
	}
	return models.UnscheduledReport{FullyScheduled: false, Sessions: sessions}
}

// Reconcile resolves the display names in generated entries back to canonical
// entity ids using lookups built from the entity lists. Names that resolve to
// nothing are returned as data-quality issues, never silently merged.
func (s *AnalyticsService) Reconcile(ctx context.Context, institutionID string) (*models.ReconciliationResult, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	faculty, _, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	classes, _, err := s.classes.List(ctx, models.ClassFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}

	facultyByName := make(map[string]string, len(faculty))
	for _, member := range faculty {
		facultyByName[member.Name] = member.ID
	}
	roomByNumber := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomByNumber[room.Number] = room.ID
	}
	classByName := make(map[string]string, len(classes))
	for _, class := range classes {
		classByName[class.Name] = class.ID
	}

	result := &models.ReconciliationResult{
		Entries: make([]models.ReconciledEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		reconciled := models.ReconciledEntry{TimetableEntry: entry}
		if id, ok := facultyByName[entry.Faculty]; ok {
			reconciled.FacultyID = id
		} else {
			result.Issues = append(result.Issues, models.ReconciliationIssue{
				Field: "faculty", Value: entry.Faculty, Day: entry.Day, Time: entry.Time,
			})
		}
		if id, ok := roomByNumber[entry.Room]; ok {
			reconciled.RoomID = id
		} else {
			result.Issues = append(result.Issues, models.ReconciliationIssue{
				Field: "room", Value: entry.Room, Day: entry.Day, Time: entry.Time,
			})
		}
		if id, ok := classByName[entry.ClassName]; ok {
			reconciled.ClassID = id
		} else {
			result.Issues = append(result.Issues, models.ReconciliationIssue{
				Field: "class", Value: entry.ClassName, Day: entry.Day, Time: entry.Time,
			})
		}
		result.Entries = append(result.Entries, reconciled)
	}
	return result, nil
}
