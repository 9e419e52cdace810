package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	"github.com/rohitbihal/smart-classroom-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T, timetables *stubTimetableStore) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(timetables, store, signer, nil, nil, "/api/v1", 1, 1)
}

func exportFixtureEntries() []models.TimetableEntry {
	return []models.TimetableEntry{
		{Day: "Tuesday", Time: "09:00-10:00", ClassName: "CSE-2-A", Subject: "Algorithms", Faculty: "Dr. Iyer", Room: "102", Type: models.SessionTheory},
		{Day: "Monday", Time: "10:00-11:00", ClassName: "CSE-2-A", Subject: "Data Structures", Faculty: "Dr. Rao", Room: "101", Type: models.SessionTheory},
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-B", Subject: "Databases, Advanced", Faculty: `Dr. "Raj" Mehta`, Room: "Lab-1", Type: models.SessionLab},
	}
}

func TestRenderCSVRoundTrip(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	data, filename, err := svc.Render(context.Background(), "inst-1", dto.ExportCSV, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, exportColumns, records[0])

	// Rows come back ordered by weekday then start time, and values with
	// embedded delimiters or quotes survive the round trip intact.
	assert.Equal(t, []string{"Monday", "09:00-10:00", "CSE-2-B", "Databases, Advanced", `Dr. "Raj" Mehta`, "Lab-1", "Lab"}, records[1])
	assert.Equal(t, "Monday", records[2][0])
	assert.Equal(t, "10:00-11:00", records[2][1])
	assert.Equal(t, "Tuesday", records[3][0])
}

func TestRenderFiltersByDayAndClass(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	data, _, err := svc.Render(context.Background(), "inst-1", dto.ExportCSV, "monday", "cse-2-a")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Data Structures", records[1][3])
}

func TestRenderPDFProducesDocument(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	data, filename, err := svc.Render(context.Background(), "inst-1", dto.ExportPDF, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderRequiresGeneratedTimetable(t *testing.T) {
	svc := newExportServiceForTest(t, newStubTimetableStore())

	_, _, err := svc.Render(context.Background(), "inst-1", dto.ExportCSV, "", "")
	assert.Error(t, err)
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	_, _, err := svc.Render(context.Background(), "inst-1", dto.ExportFormat("xlsx"), "", "")
	assert.Error(t, err)
}

func TestExportJobLifecycle(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartWorkers(ctx)
	defer svc.StopWorkers()

	job, err := svc.CreateJob(ctx, "inst-1", dto.CreateExportRequest{Format: dto.ExportCSV})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool {
		status, err := svc.JobStatus(job.ID)
		return err == nil && status.Status == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	status, err := svc.JobStatus(job.ID)
	require.NoError(t, err)
	require.NotEmpty(t, status.DownloadURL)
	assert.NotEmpty(t, status.ExpiresAt)

	token := status.DownloadURL[strings.Index(status.DownloadURL, "token=")+len("token="):]
	file, _, err := svc.OpenDownload(token)
	require.NoError(t, err)
	defer file.Close()
}

func TestExportJobFailsWithoutTimetable(t *testing.T) {
	svc := newExportServiceForTest(t, newStubTimetableStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartWorkers(ctx)
	defer svc.StopWorkers()

	job, err := svc.CreateJob(ctx, "inst-1", dto.CreateExportRequest{Format: dto.ExportPDF})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := svc.JobStatus(job.ID)
		return err == nil && status.Status == "failed"
	}, 2*time.Second, 10*time.Millisecond)

	status, err := svc.JobStatus(job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, status.Error)
}

func TestJobStatusUnknownID(t *testing.T) {
	svc := newExportServiceForTest(t, newStubTimetableStore())

	_, err := svc.JobStatus("nope")
	assert.Error(t, err)
}

func TestOpenDownloadRejectsTamperedToken(t *testing.T) {
	timetables := newStubTimetableStore()
	timetables.entries["inst-1"] = exportFixtureEntries()
	svc := newExportServiceForTest(t, timetables)

	_, _, err := svc.OpenDownload("a.1.b.c")
	assert.Error(t, err)
}

func TestBuildExportDatasetOrdering(t *testing.T) {
	dataset := buildExportDataset(exportFixtureEntries(), "", "")
	require.Len(t, dataset.Rows, 3)
	assert.Equal(t, "CSE-2-B", dataset.Rows[0]["Class"])
	assert.Equal(t, "CSE-2-A", dataset.Rows[1]["Class"])
	assert.Equal(t, "Tuesday", dataset.Rows[2]["Day"])
}
