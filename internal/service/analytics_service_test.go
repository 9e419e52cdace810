package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

func newAnalyticsServiceForTest(
	timetables *stubTimetableStore,
	faculty []models.Faculty,
	rooms []models.Room,
	classes []models.Class,
	constraints *models.Constraints,
) *AnalyticsService {
	if constraints == nil {
		defaults := models.DefaultConstraints()
		constraints = &defaults
	}
	return NewAnalyticsService(
		timetables,
		&stubFacultyReader{faculty: faculty},
		&stubRoomReader{rooms: rooms},
		&stubClassReader{classes: classes},
		&stubConstraintProvider{constraints: constraints},
		NewTimeSlotService(nil, nil),
		nil,
		nil,
	)
}

func TestRoomAvailabilityCountsConflicts(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-A", Room: "101", Type: models.SessionTheory},
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-B", Room: "101", Type: models.SessionTheory},
		{Day: "Monday", Time: "10:00-11:00", ClassName: "CSE-2-A", Room: "102", Type: models.SessionLab},
		{Day: "Tuesday", Time: "09:00-10:00", ClassName: "CSE-2-A", Room: "101", Type: models.SessionTheory},
	}
	rooms := []models.Room{
		{ID: "room-1", Number: "101", Building: "Main"},
		{ID: "room-2", Number: "102", Building: "Main"},
	}
	svc := newAnalyticsServiceForTest(timetables, nil, rooms, nil, nil)

	grid, err := svc.RoomAvailability(context.Background(), "inst-1", "Monday", nil)
	require.NoError(t, err)
	assert.Equal(t, "Monday", grid.Day)
	assert.Len(t, grid.Slots, 7)

	// Both claimants of 101@09:00 are visible: the cell shows the last writer
	// and every extra claimant is counted as a conflict.
	cell := grid.Rooms["101"]["09:00-10:00"]
	assert.Equal(t, 1, cell.ConflictCount)
	assert.Equal(t, 1, grid.ConflictTotal)
	require.Len(t, grid.Conflicts, 1)
	assert.Len(t, grid.Conflicts[0].Entries, 2)

	// Tuesday's booking does not leak into Monday's grid.
	free := grid.Rooms["102"]["09:00-10:00"]
	assert.Empty(t, free.Occupant)
}

func TestRoomAvailabilityFiltersRooms(t *testing.T) {
	timetables := newStubTimetableStore()
	rooms := []models.Room{
		{ID: "room-1", Number: "101"},
		{ID: "room-2", Number: "102"},
	}
	svc := newAnalyticsServiceForTest(timetables, nil, rooms, nil, nil)

	grid, err := svc.RoomAvailability(context.Background(), "inst-1", "Monday", []string{"102"})
	require.NoError(t, err)
	assert.Len(t, grid.Rooms, 1)
	_, ok := grid.Rooms["102"]
	assert.True(t, ok)
}

func TestRoomAvailabilityRejectsUnknownDay(t *testing.T) {
	svc := newAnalyticsServiceForTest(newStubTimetableStore(), nil, nil, nil, nil)

	_, err := svc.RoomAvailability(context.Background(), "inst-1", "Funday", nil)
	assert.Error(t, err)
}

func TestFacultyWorkload(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", Faculty: "Dr. Rao"},
		{Day: "Monday", Time: "10:00-11:00", Faculty: "Dr. Rao"},
		{Day: "Tuesday", Time: "09:00-10:00", Faculty: "Dr. Rao"},
		{Day: "Monday", Time: "09:00-10:00", Faculty: "Dr. Iyer"},
	}
	faculty := []models.Faculty{
		{ID: "fac-1", Name: "Dr. Rao", Department: "CSE", MaxWorkload: 2},
		{ID: "fac-2", Name: "Dr. Iyer", Department: "CSE", MaxWorkload: 18},
		{ID: "fac-3", Name: "Dr. Mehta", Department: "ME", MaxWorkload: 0},
	}
	svc := newAnalyticsServiceForTest(timetables, faculty, nil, nil, nil)

	workloads, err := svc.FacultyWorkload(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, workloads, 3)

	byName := make(map[string]models.FacultyWorkload, len(workloads))
	for _, w := range workloads {
		byName[w.FacultyName] = w
	}

	// Over-allocation is reported, never clamped.
	rao := byName["Dr. Rao"]
	assert.Equal(t, 3, rao.ScheduledHours)
	assert.InDelta(t, 150.0, rao.Utilization, 0.001)
	assert.True(t, rao.OverAllocated)

	iyer := byName["Dr. Iyer"]
	assert.Equal(t, 1, iyer.ScheduledHours)
	assert.False(t, iyer.OverAllocated)

	// Zero declared capacity yields zero utilization, not a division error.
	mehta := byName["Dr. Mehta"]
	assert.Zero(t, mehta.Utilization)
	assert.False(t, mehta.OverAllocated)
}

func TestRoomUtilization(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", Room: "101"},
		{Day: "Monday", Time: "10:00-11:00", Room: "101"},
		{Day: "Tuesday", Time: "09:00-10:00", Room: "101"},
	}
	rooms := []models.Room{
		{ID: "room-1", Number: "101", Building: "Main"},
		{ID: "room-2", Number: "102", Building: "Main"},
	}
	svc := newAnalyticsServiceForTest(timetables, nil, rooms, nil, nil)

	usages, err := svc.RoomUtilization(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, usages, 2)

	// 5 working days x 7 slots = 35 bookable slots per room.
	assert.Equal(t, 35, usages[0].AvailableSlots)
	assert.Equal(t, 3, usages[0].ScheduledSlots)
	assert.InDelta(t, 3.0/35.0*100, usages[0].Utilization, 0.001)
	assert.Zero(t, usages[1].Utilization)
}

func TestEquipmentUtilization(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", Room: "101"},
		{Day: "Monday", Time: "10:00-11:00", Room: "102"},
	}
	rooms := []models.Room{
		{ID: "room-1", Number: "101", Equipment: models.RoomEquipment{
			Projector: true,
			// A machine count without the available flag does not count as
			// computer equipment.
			ComputerSystems: models.ComputerSystems{Available: false, Count: 30},
		}},
		{ID: "room-2", Number: "102", Equipment: models.RoomEquipment{
			ComputerSystems: models.ComputerSystems{Available: true, Count: 40},
		}},
	}
	svc := newAnalyticsServiceForTest(timetables, nil, rooms, nil, nil)

	usages, err := svc.EquipmentUtilization(context.Background(), "inst-1")
	require.NoError(t, err)

	byName := make(map[string]models.EquipmentUsage, len(usages))
	for _, usage := range usages {
		byName[usage.Equipment] = usage
	}
	assert.Equal(t, 1, byName["projector"].BookedHours)
	assert.Equal(t, 1, byName["computerSystems"].BookedHours)
	assert.Equal(t, 2, byName["computerSystems"].TotalHours)
	assert.InDelta(t, 50.0, byName["computerSystems"].Utilization, 0.001)
	assert.Zero(t, byName["smartBoard"].BookedHours)
}

func TestBuildUnscheduledReport(t *testing.T) {
	report := BuildUnscheduledReport(nil)
	assert.True(t, report.FullyScheduled)
	assert.NotNil(t, report.Sessions)

	report = BuildUnscheduledReport([]models.UnscheduledSession{
		{ClassName: "CSE-2-A", Subject: "CS202", Reason: "faculty unavailable"},
	})
	assert.False(t, report.FullyScheduled)
	assert.Len(t, report.Sessions, 1)
}

func TestReconcileFlagsUnresolvedNames(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-A", Faculty: "Dr. Rao", Room: "101"},
		{Day: "Monday", Time: "10:00-11:00", ClassName: "CSE-2-A", Faculty: "Dr. Ghost", Room: "101"},
	}
	faculty := []models.Faculty{{ID: "fac-1", Name: "Dr. Rao"}}
	rooms := []models.Room{{ID: "room-1", Number: "101"}}
	classes := []models.Class{{ID: "class-1", Name: "CSE-2-A"}}
	svc := newAnalyticsServiceForTest(timetables, faculty, rooms, classes, nil)

	result, err := svc.Reconcile(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	assert.Equal(t, "fac-1", result.Entries[0].FacultyID)
	assert.Equal(t, "room-1", result.Entries[0].RoomID)
	assert.Equal(t, "class-1", result.Entries[0].ClassID)

	// The unknown faculty name surfaces as an issue instead of a silent merge.
	assert.Empty(t, result.Entries[1].FacultyID)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "faculty", result.Issues[0].Field)
	assert.Equal(t, "Dr. Ghost", result.Issues[0].Value)
}

func TestUnscheduledReport(t *testing.T) {
	timetables := newStubTimetableStore()
	svc := newAnalyticsServiceForTest(timetables, nil, nil, nil, nil)

	// No generation yet is an error, not an empty success.
	_, err := svc.UnscheduledReport(context.Background(), "inst-1")
	require.Error(t, err)

	timetables.entries["inst-1"] = []models.TimetableEntry{{Day: "Monday"}}
	report, err := svc.UnscheduledReport(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.True(t, report.FullyScheduled)

	timetables.unscheduled["inst-1"] = []models.UnscheduledSession{
		{ClassName: "CSE-2-A", Subject: "CS202", Reason: "faculty unavailable"},
	}
	report, err = svc.UnscheduledReport(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.False(t, report.FullyScheduled)
	assert.Len(t, report.Sessions, 1)
}
