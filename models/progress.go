package models

import (
	"time"

	"gorm.io/gorm"
)

// Production stages, in garment order
const (
	StageCutting      = "cutting"
	StageStitching    = "stitching"
	StageFitting      = "fitting"
	StageFinishing    = "finishing"
	StageQualityCheck = "quality_check"
)

// ProductionStages lists every stage an order must pass through before it is ready
var ProductionStages = []string{
	StageCutting,
	StageStitching,
	StageFitting,
	StageFinishing,
	StageQualityCheck,
}

// Progress stage statuses
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
)

// IsValidStage reports whether the stage belongs to the closed enum
func IsValidStage(stage string) bool {
	for _, s := range ProductionStages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsValidStageStatus reports whether the status is a known stage status
func IsValidStageStatus(status string) bool {
	return status == StageStatusPending ||
		status == StageStatusInProgress ||
		status == StageStatusCompleted
}

// ProgressStage represents one discrete phase of garment production.
// The unique index on (order_id, stage) gives upsert-by-stage semantics:
// exactly one row per stage per order.
type ProgressStage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;uniqueIndex:idx_progress_order_stage" json:"order_id"`
	Stage       string         `gorm:"not null;uniqueIndex:idx_progress_order_stage" json:"stage"`
	Status      string         `gorm:"not null;default:'pending'" json:"status"`
	Notes       string         `gorm:"type:text" json:"notes"`
	ImageKeys   StringList     `gorm:"type:text" json:"image_keys"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ProgressStage model
func (ProgressStage) TableName() string {
	return "progress_stages"
}
