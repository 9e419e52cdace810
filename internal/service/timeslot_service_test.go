package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

func TestDeriveSlots(t *testing.T) {
	svc := NewTimeSlotService(nil, nil)

	tests := []struct {
		name     string
		prefs    models.TimePreferences
		expected []string
	}{
		{
			name: "standard day with lunch break",
			prefs: models.TimePreferences{
				StartTime:      "09:00",
				EndTime:        "17:00",
				LunchStartTime: "13:00",
				LunchDuration:  60,
				SlotDuration:   60,
			},
			expected: []string{
				"09:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00",
				"14:00-15:00", "15:00-16:00", "16:00-17:00",
			},
		},
		{
			name: "lunch immediately after first slot",
			prefs: models.TimePreferences{
				StartTime:      "09:00",
				EndTime:        "13:00",
				LunchStartTime: "10:00",
				LunchDuration:  60,
				SlotDuration:   60,
			},
			expected: []string{"09:00-10:00", "11:00-12:00", "12:00-13:00"},
		},
		{
			name: "ninety minute slots skip the one spanning lunch",
			prefs: models.TimePreferences{
				StartTime:      "09:00",
				EndTime:        "17:00",
				LunchStartTime: "13:00",
				LunchDuration:  60,
				SlotDuration:   90,
			},
			expected: []string{"09:00-10:30", "10:30-12:00", "14:00-15:30", "15:30-17:00"},
		},
		{
			name: "no lunch configured",
			prefs: models.TimePreferences{
				StartTime:    "08:00",
				EndTime:      "11:00",
				SlotDuration: 60,
			},
			expected: []string{"08:00-09:00", "09:00-10:00", "10:00-11:00"},
		},
		{
			name: "partial trailing slot is dropped",
			prefs: models.TimePreferences{
				StartTime:    "09:00",
				EndTime:      "10:30",
				SlotDuration: 60,
			},
			expected: []string{"09:00-10:00"},
		},
		{
			name: "start equal to end yields nothing",
			prefs: models.TimePreferences{
				StartTime:    "09:00",
				EndTime:      "09:00",
				SlotDuration: 60,
			},
			expected: []string{},
		},
		{
			name: "malformed start time yields nothing",
			prefs: models.TimePreferences{
				StartTime:    "morning",
				EndTime:      "17:00",
				SlotDuration: 60,
			},
			expected: []string{},
		},
		{
			name: "zero slot duration yields nothing",
			prefs: models.TimePreferences{
				StartTime: "09:00",
				EndTime:   "17:00",
			},
			expected: []string{},
		},
		{
			name: "unparseable lunch is treated as no lunch",
			prefs: models.TimePreferences{
				StartTime:      "09:00",
				EndTime:        "12:00",
				LunchStartTime: "noonish",
				LunchDuration:  60,
				SlotDuration:   60,
			},
			expected: []string{"09:00-10:00", "10:00-11:00", "11:00-12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.DeriveSlots(tt.prefs))
		})
	}
}

func TestDeriveSlotsDeterministic(t *testing.T) {
	svc := NewTimeSlotService(nil, nil)
	prefs := models.DefaultConstraints().TimePreferences

	first := svc.DeriveSlots(prefs)
	second := svc.DeriveSlots(prefs)
	assert.Equal(t, first, second)
}

func TestSlotsPerDay(t *testing.T) {
	svc := NewTimeSlotService(nil, nil)
	prefs := models.DefaultConstraints().TimePreferences

	assert.Equal(t, 7, svc.SlotsPerDay(prefs))
}
