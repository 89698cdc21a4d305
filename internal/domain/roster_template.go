package domain

import (
	"time"
)

type RosterTemplateShift struct {
	ID                      int64   `json:"id"`
	StartTime               string  `json:"startTime"`
	EndTime                 string  `json:"endTime"`
	RequiredAssistantNumber int32   `json:"requiredAssistantNumber"`
	ApplicableDays          []int32 `json:"applicableDays"`
}

type RosterTemplate struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Shifts      []RosterTemplateShift `json:"shifts"`
	CreatedAt   time.Time             `json:"createdAt"`
	Version     int32                 `json:"-"`
}
