package models

import (
	"time"
)

// JobRun records the outcome of one background time zone sync.
type JobRun struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ContactID    string     `gorm:"index;type:varchar(255)" json:"contact_id"`
	Status       string     `gorm:"index;type:varchar(32)" json:"status"` // queued, running, updated, unresolved, update_failed
	Outcome      string     `gorm:"type:varchar(32)" json:"outcome"`     // resolved, fallback_resolved, unresolved
	Source       string     `gorm:"type:varchar(32)" json:"source"`
	Candidate    string     `gorm:"type:text" json:"candidate"`
	TimeZoneID   string     `gorm:"type:varchar(64)" json:"time_zone_id"`
	TimeZoneName string     `gorm:"type:varchar(255)" json:"time_zone_name"`
	Strategy     string     `gorm:"type:varchar(64)" json:"strategy"`
	Address      string     `gorm:"type:text" json:"address"` // JSON address parts
	Attempts     string     `gorm:"type:text" json:"attempts"` // JSON candidate attempts
	DeadLetter   bool       `gorm:"index;default:false" json:"dead_letter"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at"`
}

func (JobRun) TableName() string {
	return "job_runs"
}
