package model

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quote request status values; only "pending" can be set at creation, the
// rest belong to the admin workflow.
const (
	QuotePending   = "pending"
	QuoteContacted = "contacted"
	QuoteQuoted    = "quoted"
	QuoteAccepted  = "accepted"
	QuoteRejected  = "rejected"
	QuoteCompleted = "completed"
	QuoteCancelled = "cancelled"
)

// PlantDescriptor is a snapshot of the plant a quote is about, not a live
// reference
type PlantDescriptor struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Image string `json:"image,omitempty"`
}

// SupplyItem is one requested supply line
type SupplyItem struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity"`
}

// ContactInfo holds the requester's delivery and contact details
type ContactInfo struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	Division      string `json:"division"`
	District      string `json:"district"`
	Area          string `json:"area"`
	Address       string `json:"address"`
	PostalCode    string `json:"postalCode,omitempty"`
	ContactMethod string `json:"contactMethod"`
}

// QuoteRequest represents a supply-sourcing inquiry. The requester may be
// anonymous, so the user reference is optional.
type QuoteRequest struct {
	ID           uint                              `json:"id" gorm:"primaryKey"`
	UserID       *uint                             `json:"user,omitempty" gorm:"index"`
	RequestID    string                            `json:"requestId" gorm:"type:varchar(20);uniqueIndex;not null"`
	Plant        datatypes.JSONType[PlantDescriptor] `json:"plant"`
	Supplies     datatypes.JSONSlice[SupplyItem]   `json:"supplies"`
	ContactInfo  datatypes.JSONType[ContactInfo]   `json:"contactInfo"`
	Notes        string                            `json:"notes,omitempty" gorm:"type:text"`
	Status       string                            `json:"status" gorm:"type:varchar(15);default:'pending';index"`
	QuotedAmount *float64                          `json:"quotedAmount,omitempty"`
	QuotedAt     *time.Time                        `json:"quotedAt,omitempty"`
	RespondedAt  *time.Time                        `json:"respondedAt,omitempty"`
	CompletedAt  *time.Time                        `json:"completedAt,omitempty"`
	AdminNotes   string                            `json:"adminNotes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time                         `json:"createdAt"`
	UpdatedAt    time.Time                         `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt                    `json:"-" gorm:"index"`
}

// EnsureRequestID generates the human-readable tracking id once at creation:
// "REQ" followed by the last 8 digits of the epoch-millisecond counter. An
// already-set id is kept unchanged through subsequent saves.
func (q *QuoteRequest) EnsureRequestID(now time.Time) {
	if q.RequestID != "" {
		return
	}
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	q.RequestID = "REQ" + millis
}
