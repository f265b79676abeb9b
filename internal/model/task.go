package model

import (
	"time"

	"gorm.io/datatypes"
)

// Task status values
const (
	TaskPending    = "pending"
	TaskInProgress = "in-progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

// Reminder tracks whether a reminder should fire for a task and when it was
// last sent
type Reminder struct {
	Enabled bool       `json:"enabled"`
	SentAt  *time.Time `json:"sentAt,omitempty"`
}

// Recurring describes an optional repetition rule for a task
type Recurring struct {
	Enabled        bool       `json:"enabled"`
	Frequency      string     `json:"frequency,omitempty"`
	NextOccurrence *time.Time `json:"nextOccurrence,omitempty"`
}

// Task represents a scheduled to-do item, optionally tied to a plant.
// Tasks are physically deleted, unlike plants.
type Task struct {
	ID          uint                          `json:"id" gorm:"primaryKey"`
	UserID      uint                          `json:"user" gorm:"index:idx_task_user_due;index:idx_task_user_status;not null"`
	PlantID     *uint                         `json:"plant,omitempty" gorm:"index"`
	PlantName   string                        `json:"plantName" gorm:"type:varchar(100);not null"`
	Task        string                        `json:"task" gorm:"type:varchar(255);not null"`
	TaskType    string                        `json:"taskType" gorm:"type:varchar(20);default:'other'"`
	Priority    string                        `json:"priority" gorm:"type:varchar(10);default:'medium'"`
	Status      string                        `json:"status" gorm:"type:varchar(15);default:'pending';index:idx_task_user_status"`
	DueDate     time.Time                     `json:"dueDate" gorm:"not null;index:idx_task_user_due"`
	Time        string                        `json:"time" gorm:"type:varchar(10);default:'Anytime'"`
	CompletedAt *time.Time                    `json:"completedAt,omitempty"`
	Notes       string                        `json:"notes,omitempty" gorm:"type:text"`
	Reminder    datatypes.JSONType[Reminder]  `json:"reminder"`
	Recurring   datatypes.JSONType[Recurring] `json:"recurring"`
	CreatedAt   time.Time                     `json:"createdAt"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
}

// ApplyStatus transitions the task status and keeps completedAt consistent:
// it is stamped exactly when the status moves into completed, and cleared
// exactly when the status moves out of it.
func (t *Task) ApplyStatus(status string, now time.Time) {
	if status == TaskCompleted && t.Status != TaskCompleted {
		t.CompletedAt = &now
	}
	if status != TaskCompleted && t.Status == TaskCompleted {
		t.CompletedAt = nil
	}
	t.Status = status
}

// PriorityRank orders priorities high before low in tie-break sorting
const PriorityRank = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END"
