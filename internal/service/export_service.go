package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/dto"
	"github.com/rohitbihal/smart-classroom-api/internal/models"
	appErrors "github.com/rohitbihal/smart-classroom-api/pkg/errors"
	"github.com/rohitbihal/smart-classroom-api/pkg/export"
	"github.com/rohitbihal/smart-classroom-api/pkg/jobs"
	"github.com/rohitbihal/smart-classroom-api/pkg/storage"
)

// exportColumns fixes the column order of every timetable export so repeated
// exports of the same timetable are byte-comparable.
var exportColumns = []string{"Day", "Time", "Class", "Subject", "Faculty", "Room", "Type"}

type exportTimetableReader interface {
	ListAll(ctx context.Context, institutionID string) ([]models.TimetableEntry, error)
}

type exportJobState struct {
	ID            string
	InstitutionID string
	Format        dto.ExportFormat
	Day           string
	Class         string
	Status        string
	DownloadToken string
	ExpiresAt     time.Time
	Err           string
	CreatedAt     time.Time
}

// ExportService renders the generated timetable to CSV or PDF, either inline
// or as a background job whose artifact is fetched later through a signed
// download token.
type ExportService struct {
	timetables exportTimetableReader
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	store      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	queue      *jobs.Queue
	metrics    *MetricsService
	logger     *zap.Logger
	basePath   string

	mu      sync.RWMutex
	jobsMap map[string]*exportJobState
	jobTTL  time.Duration
}

// NewExportService constructs the export pipeline. The returned service owns
// its queue; call StartWorkers before enqueueing.
func NewExportService(
	timetables exportTimetableReader,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	logger *zap.Logger,
	basePath string,
	workers, retries int,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		timetables: timetables,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		store:      store,
		signer:     signer,
		metrics:    metrics,
		logger:     logger,
		basePath:   strings.TrimRight(basePath, "/"),
		jobsMap:    make(map[string]*exportJobState),
		jobTTL:     24 * time.Hour,
	}
	s.queue = jobs.NewQueue("timetable-exports", s.process, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// StartWorkers starts the background export workers.
func (s *ExportService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains and stops the workers.
func (s *ExportService) StopWorkers() {
	s.queue.Stop()
}

// Render produces export bytes inline. Day and class act as optional filters.
func (s *ExportService) Render(ctx context.Context, institutionID string, format dto.ExportFormat, day, class string) ([]byte, string, error) {
	entries, err := s.timetables.ListAll(ctx, institutionID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if len(entries) == 0 {
		return nil, "", appErrors.ErrNotGenerated
	}
	dataset := buildExportDataset(entries, day, class)

	switch format {
	case dto.ExportCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, exportFilename(institutionID, "csv"), nil
	case dto.ExportPDF:
		data, err := s.pdf.Render(dataset, "Class Timetable")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, exportFilename(institutionID, "pdf"), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// CreateJob enqueues an asynchronous export and returns its initial state.
func (s *ExportService) CreateJob(ctx context.Context, institutionID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error) {
	if req.Format != dto.ExportCSV && req.Format != dto.ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", req.Format))
	}

	state := &exportJobState{
		ID:            uuid.NewString(),
		InstitutionID: institutionID,
		Format:        req.Format,
		Day:           req.Day,
		Class:         req.Class,
		Status:        "pending",
		CreatedAt:     time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobsMap[state.ID] = state
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: state.ID, Type: "export"}); err != nil {
		s.mu.Lock()
		delete(s.jobsMap, state.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.jobResponse(state), nil
}

// JobStatus reports the current state of an asynchronous export.
func (s *ExportService) JobStatus(jobID string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	state, ok := s.jobsMap[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return s.jobResponse(state), nil
}

// OpenDownload validates a signed download token and opens the stored artifact.
func (s *ExportService) OpenDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export artifact no longer available")
	}
	return file, relPath, nil
}

// StartCleanup periodically removes expired job records and stale artifacts.
func (s *ExportService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
}

func (s *ExportService) cleanup() {
	cutoff := time.Now().Add(-s.jobTTL)
	s.mu.Lock()
	for id, state := range s.jobsMap {
		if state.CreatedAt.Before(cutoff) {
			delete(s.jobsMap, id)
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if deleted, err := s.store.CleanupOlderThan(s.jobTTL); err != nil {
			s.logger.Warn("export cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("removed stale export artifacts", zap.Int("count", len(deleted)))
		}
	}
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	state, ok := s.jobsMap[job.ID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	state.Status = "processing"
	snapshot := *state
	s.mu.Unlock()

	data, _, err := s.Render(ctx, snapshot.InstitutionID, snapshot.Format, snapshot.Day, snapshot.Class)
	if err != nil {
		s.failJob(job.ID, snapshot.Format, err)
		return err
	}

	relPath := fmt.Sprintf("%s/%s.%s", snapshot.InstitutionID, job.ID, snapshot.Format)
	if _, err := s.store.Save(relPath, data); err != nil {
		s.failJob(job.ID, snapshot.Format, err)
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failJob(job.ID, snapshot.Format, err)
		return err
	}

	s.mu.Lock()
	if state, ok := s.jobsMap[job.ID]; ok {
		state.Status = "completed"
		state.DownloadToken = token
		state.ExpiresAt = expiresAt
	}
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordExportJob(string(snapshot.Format), "success")
	}
	s.logger.Info("export completed",
		zap.String("job_id", job.ID),
		zap.String("format", string(snapshot.Format)))
	return nil
}

func (s *ExportService) failJob(jobID string, format dto.ExportFormat, cause error) {
	s.mu.Lock()
	if state, ok := s.jobsMap[jobID]; ok {
		state.Status = "failed"
		state.Err = cause.Error()
	}
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordExportJob(string(format), "failure")
	}
	s.logger.Error("export failed", zap.String("job_id", jobID), zap.Error(cause))
}

func (s *ExportService) jobResponse(state *exportJobState) *dto.ExportJobResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := &dto.ExportJobResponse{
		ID:     state.ID,
		Status: state.Status,
		Format: string(state.Format),
		Error:  state.Err,
	}
	if state.DownloadToken != "" {
		resp.DownloadURL = s.basePath + "/timetable/exports/download?token=" + state.DownloadToken
		resp.ExpiresAt = state.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// buildExportDataset flattens timetable entries into export rows ordered by
// weekday, then start time, then class name.
func buildExportDataset(entries []models.TimetableEntry, day, class string) export.Dataset {
	dayRank := make(map[string]int, len(models.Weekdays))
	for i, name := range models.Weekdays {
		dayRank[name] = i
	}

	filtered := make([]models.TimetableEntry, 0, len(entries))
	for _, entry := range entries {
		if day != "" && !strings.EqualFold(entry.Day, day) {
			continue
		}
		if class != "" && !strings.EqualFold(entry.ClassName, class) {
			continue
		}
		filtered = append(filtered, entry)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if dayRank[filtered[i].Day] != dayRank[filtered[j].Day] {
			return dayRank[filtered[i].Day] < dayRank[filtered[j].Day]
		}
		if filtered[i].Time != filtered[j].Time {
			return filtered[i].Time < filtered[j].Time
		}
		return filtered[i].ClassName < filtered[j].ClassName
	})

	rows := make([]map[string]string, 0, len(filtered))
	for _, entry := range filtered {
		rows = append(rows, map[string]string{
			"Day":     entry.Day,
			"Time":    entry.Time,
			"Class":   entry.ClassName,
			"Subject": entry.Subject,
			"Faculty": entry.Faculty,
			"Room":    entry.Room,
			"Type":    string(entry.Type),
		})
	}
	return export.Dataset{Headers: exportColumns, Rows: rows}
}

func exportFilename(institutionID, ext string) string {
	return fmt.Sprintf("timetable-%s-%s.%s", institutionID, time.Now().UTC().Format("20060102-150405"), ext)
}
