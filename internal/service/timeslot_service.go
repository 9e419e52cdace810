package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

// TimeSlotService derives the week's bookable slot grid from institutional
// time preferences. Derivation is pure and deterministic; Redis only caches
// the result per preference fingerprint.
type TimeSlotService struct {
	cache  *CacheService
	logger *zap.Logger
}

// NewTimeSlotService constructs the service.
func NewTimeSlotService(cache *CacheService, logger *zap.Logger) *TimeSlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{cache: cache, logger: logger}
}

// DeriveSlots walks the working day in slot-duration increments and returns
// the ordered "HH:MM-HH:MM" grid. Candidates touching the lunch interval skip
// forward to lunch end; a candidate that would run past the end of day stops
// the walk. Malformed preferences yield an empty grid, never an error: callers
// treat empty as "not configured".
func (s *TimeSlotService) DeriveSlots(prefs models.TimePreferences) []string {
	start, okStart := parseClock(prefs.StartTime)
	end, okEnd := parseClock(prefs.EndTime)
	if !okStart || !okEnd || start >= end || prefs.SlotDuration <= 0 {
		return []string{}
	}

	lunchStart, lunchOK := parseClock(prefs.LunchStartTime)
	lunchEnd := lunchStart + prefs.LunchDuration
	if !lunchOK || prefs.LunchDuration <= 0 {
		lunchStart, lunchEnd = -1, -1
	}

	slots := []string{}
	for t := start; ; {
		next := t + prefs.SlotDuration
		if lunchEnd > 0 && t < lunchEnd && next > lunchStart {
			// Candidate starts inside, ends inside, or spans the lunch
			// window entirely: resume at lunch end without emitting.
			t = lunchEnd
			continue
		}
		if next > end {
			break
		}
		slots = append(slots, formatClock(t)+"-"+formatClock(next))
		t = next
	}
	return slots
}

// DeriveSlotsCached returns the derived grid, consulting the cache keyed by
// institution and preference fingerprint first.
func (s *TimeSlotService) DeriveSlotsCached(ctx context.Context, institutionID string, prefs models.TimePreferences) []string {
	key := slotCacheKey(institutionID, prefs)
	var cached []string
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached
		}
	}
	slots := s.DeriveSlots(prefs)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, slots, 24*time.Hour); err != nil {
			s.logger.Warn("cache derived slots", zap.Error(err))
		}
	}
	return slots
}

// SlotsPerDay reports the number of bookable slots in one working day.
func (s *TimeSlotService) SlotsPerDay(prefs models.TimePreferences) int {
	return len(s.DeriveSlots(prefs))
}

func slotCacheKey(institutionID string, prefs models.TimePreferences) string {
	return fmt.Sprintf("slots:%s:%s:%s:%s:%d:%d",
		institutionID, prefs.StartTime, prefs.EndTime, prefs.LunchStartTime, prefs.LunchDuration, prefs.SlotDuration)
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func formatClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
