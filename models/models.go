package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session tracks one server or CLI process
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	// Statistics
	ScansCount int `gorm:"default:0"`

	// Client info
	ClientInfo datatypes.JSON `gorm:"type:jsonb"`

	Runs []ScanRun `gorm:"foreignKey:SessionID"`
}

// ScanRun is one stored project scan
type ScanRun struct {
	ID        string  `gorm:"primaryKey;type:varchar(36)"`
	SessionID *string `gorm:"type:varchar(36);index"` // nil for one-off CLI scans

	Root      string `gorm:"type:varchar(1024);not null;index"`
	Framework bool   `gorm:"default:false"`
	Digest    string `gorm:"type:varchar(16)"` // xxhash of the hint listing

	FilesCount  int `gorm:"default:0"`
	HintsCount  int `gorm:"default:0"`
	FailedCount int `gorm:"default:0"`
	DurationMs  int64

	Summary datatypes.JSON `gorm:"type:jsonb"` // hints per source
	Report  string         `gorm:"type:text"` // one line per hint

	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	Hints []Hint `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// Hint is a single stored annotation or reference
type Hint struct {
	ID    uint   `gorm:"primaryKey"`
	RunID string `gorm:"type:varchar(36);index;not null"`

	File   string `gorm:"type:varchar(1024);not null"`
	Line   int
	Column int

	Source  string `gorm:"type:varchar(20)"` // annotator or reference kind
	Style   string `gorm:"type:varchar(20)"`
	Tooltip string `gorm:"type:text"`
	Target  string `gorm:"type:varchar(1024)"` // resolved reference target
}

// TableName customizations for cleaner names
func (Session) TableName() string { return "sessions" }
func (ScanRun) TableName() string { return "scan_runs" }
func (Hint) TableName() string    { return "hints" }
