package model

import (
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plant status values
const (
	PlantHealthy   = "healthy"
	PlantAttention = "attention"
	PlantSick      = "sick"
	PlantHarvested = "harvested"
	PlantDead      = "dead"
)

// Note type values; "observation" is the default when a note is appended
// without one.
const (
	NoteObservation = "observation"
	NoteAction      = "action"
	NoteIssue       = "issue"
	NoteHarvest     = "harvest"
)

// WateringSchedule tracks the watering part of a plant's care schedule
type WateringSchedule struct {
	Frequency    string     `json:"frequency,omitempty"`
	LastWatered  *time.Time `json:"lastWatered,omitempty"`
	NextWatering *time.Time `json:"nextWatering,omitempty"`
}

// FertilizingSchedule tracks the fertilizing part of a plant's care schedule
type FertilizingSchedule struct {
	Frequency       string     `json:"frequency,omitempty"`
	LastFertilized  *time.Time `json:"lastFertilized,omitempty"`
	NextFertilizing *time.Time `json:"nextFertilizing,omitempty"`
}

// PruningSchedule tracks the pruning part of a plant's care schedule
type PruningSchedule struct {
	Frequency  string     `json:"frequency,omitempty"`
	LastPruned *time.Time `json:"lastPruned,omitempty"`
}

// CareSchedule is the nested care plan embedded in a plant record
type CareSchedule struct {
	Watering    WateringSchedule    `json:"watering"`
	Fertilizing FertilizingSchedule `json:"fertilizing"`
	Pruning     PruningSchedule     `json:"pruning"`
}

// PlantNote is one append-only journal entry on a plant
type PlantNote struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Type    string    `json:"type"`
}

// HarvestEntry is one append-only harvest log record
type HarvestEntry struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Quality  string    `json:"quality"`
	Notes    string    `json:"notes,omitempty"`
}

// Plant represents one tracked plant owned by exactly one user
type Plant struct {
	ID                  uint                              `json:"id" gorm:"primaryKey"`
	UserID              uint                              `json:"user" gorm:"index;not null"`
	Name                string                            `json:"name" gorm:"type:varchar(100);not null"`
	Type                string                            `json:"type" gorm:"type:varchar(20);not null"`
	Variety             string                            `json:"variety" gorm:"type:varchar(100)"`
	Image               string                            `json:"image" gorm:"type:varchar(10);default:'🌱'"`
	PlantedDate         time.Time                         `json:"plantedDate"`
	ExpectedHarvestDate *time.Time                        `json:"expectedHarvestDate,omitempty"`
	DaysGrowing         int                               `json:"daysGrowing" gorm:"default:0"`
	Health              int                               `json:"health" gorm:"default:100"`
	Status              string                            `json:"status" gorm:"type:varchar(20);default:'healthy'"`
	Location            string                            `json:"location" gorm:"type:varchar(100);default:'Garden'"`
	CareSchedule        datatypes.JSONType[CareSchedule]  `json:"careSchedule"`
	Notes               datatypes.JSONSlice[PlantNote]    `json:"notes"`
	HarvestLog          datatypes.JSONSlice[HarvestEntry] `json:"harvestLog"`
	IsActive            bool                              `json:"isActive" gorm:"default:true"`
	CreatedAt           time.Time                         `json:"createdAt"`
	UpdatedAt           time.Time                         `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt                    `json:"-" gorm:"index"`
}

// ComputeDaysGrowing recomputes the elapsed growing days from the planted
// date. Handlers call it with the current time before every save, so the
// stored value is correct as of the last write and never set by a caller.
func (p *Plant) ComputeDaysGrowing(now time.Time) {
	if p.PlantedDate.IsZero() {
		return
	}
	millis := now.Sub(p.PlantedDate).Milliseconds()
	p.DaysGrowing = int(math.Floor(float64(millis) / (1000 * 60 * 60 * 24)))
}

// ClampHealth keeps the health score within [0,100]
func (p *Plant) ClampHealth() {
	if p.Health < 0 {
		p.Health = 0
	}
	if p.Health > 100 {
		p.Health = 100
	}
}

// AppendNote adds a journal entry dated now. Existing notes are never
// removed or reordered.
func (p *Plant) AppendNote(now time.Time, content, noteType string) {
	if noteType == "" {
		noteType = NoteObservation
	}
	p.Notes = append(p.Notes, PlantNote{
		Date:    now,
		Content: content,
		Type:    noteType,
	})
}

// AppendHarvest adds a harvest log entry; the date defaults to now when the
// caller omits it.
func (p *Plant) AppendHarvest(now time.Time, entry HarvestEntry) {
	if entry.Date.IsZero() {
		entry.Date = now
	}
	p.HarvestLog = append(p.HarvestLog, entry)
}

// WateringUpdate carries the supplied watering fields of a care schedule
// update; nil fields are left untouched.
type WateringUpdate struct {
	Frequency    *string    `json:"frequency"`
	LastWatered  *time.Time `json:"lastWatered"`
	NextWatering *time.Time `json:"nextWatering"`
}

// FertilizingUpdate carries the supplied fertilizing fields of a care
// schedule update
type FertilizingUpdate struct {
	Frequency       *string    `json:"frequency"`
	LastFertilized  *time.Time `json:"lastFertilized"`
	NextFertilizing *time.Time `json:"nextFertilizing"`
}

// PruningUpdate carries the supplied pruning fields of a care schedule update
type PruningUpdate struct {
	Frequency  *string    `json:"frequency"`
	LastPruned *time.Time `json:"lastPruned"`
}

// CareScheduleUpdate is a partial care schedule; absent sub-objects leave the
// existing sub-object untouched.
type CareScheduleUpdate struct {
	Watering    *WateringUpdate    `json:"watering"`
	Fertilizing *FertilizingUpdate `json:"fertilizing"`
	Pruning     *PruningUpdate     `json:"pruning"`
}

// MergeCareSchedule shallow-merges each supplied sub-object into the existing
// schedule: supplied keys overwrite, omitted keys persist.
func (p *Plant) MergeCareSchedule(u CareScheduleUpdate) {
	cs := p.CareSchedule.Data()

	if u.Watering != nil {
		if u.Watering.Frequency != nil {
			cs.Watering.Frequency = *u.Watering.Frequency
		}
		if u.Watering.LastWatered != nil {
			cs.Watering.LastWatered = u.Watering.LastWatered
		}
		if u.Watering.NextWatering != nil {
			cs.Watering.NextWatering = u.Watering.NextWatering
		}
	}

	if u.Fertilizing != nil {
		if u.Fertilizing.Frequency != nil {
			cs.Fertilizing.Frequency = *u.Fertilizing.Frequency
		}
		if u.Fertilizing.LastFertilized != nil {
			cs.Fertilizing.LastFertilized = u.Fertilizing.LastFertilized
		}
		if u.Fertilizing.NextFertilizing != nil {
			cs.Fertilizing.NextFertilizing = u.Fertilizing.NextFertilizing
		}
	}

	if u.Pruning != nil {
		if u.Pruning.Frequency != nil {
			cs.Pruning.Frequency = *u.Pruning.Frequency
		}
		if u.Pruning.LastPruned != nil {
			cs.Pruning.LastPruned = u.Pruning.LastPruned
		}
	}

	p.CareSchedule = datatypes.NewJSONType(cs)
}
