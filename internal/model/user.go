package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Garden type values accepted for a gardener profile
const (
	GardenBalcony  = "balcony"
	GardenRooftop  = "rooftop"
	GardenIndoor   = "indoor"
	GardenBackyard = "backyard"
)

// Location holds the free-form location fields of a gardener profile
type Location struct {
	City     string `json:"city,omitempty"`
	Division string `json:"division,omitempty"`
	District string `json:"district,omitempty"`
	Area     string `json:"area,omitempty"`
}

// User represents a registered gardener account stored in the database.
// The password digest is never serialized.
type User struct {
	ID                  uint                         `json:"id" gorm:"primaryKey"`
	FullName            string                       `json:"fullName" gorm:"type:varchar(100);not null"`
	Email               string                       `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password            string                       `json:"-" gorm:"type:varchar(255);not null"`
	Avatar              string                       `json:"avatar" gorm:"type:varchar(10)"`
	Location            datatypes.JSONType[Location] `json:"location"`
	GardenType          string                       `json:"gardenType" gorm:"type:varchar(20);default:'balcony'"`
	SpaceSize           string                       `json:"spaceSize" gorm:"type:varchar(50)"`
	Experience          string                       `json:"experience" gorm:"type:varchar(20);default:'beginner'"`
	Plants              datatypes.JSONSlice[string]  `json:"plants"`
	Level               string                       `json:"level" gorm:"type:varchar(50);default:'Budding Gardener'"`
	Points              int                          `json:"points" gorm:"default:0"`
	PlantsGrown         int                          `json:"plantsGrown" gorm:"default:0"`
	HarvestsCompleted   int                          `json:"harvestsCompleted" gorm:"default:0"`
	IsEmailVerified     bool                         `json:"isEmailVerified" gorm:"default:false"`
	IsActive            bool                         `json:"isActive" gorm:"default:true"`
	LastLogin           *time.Time                   `json:"lastLogin,omitempty"`
	ResetPasswordToken  string                       `json:"-" gorm:"type:varchar(255)"`
	ResetPasswordExpire *time.Time                   `json:"-"`
	CreatedAt           time.Time                    `json:"createdAt"`
	UpdatedAt           time.Time                    `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt               `json:"-" gorm:"index"`
}

// Normalize trims the profile fields and fills the derived avatar glyph.
// Email comparison is case-insensitive throughout, so the address is stored
// lowercased.
func (u *User) Normalize() {
	u.FullName = strings.TrimSpace(u.FullName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Avatar == "" {
		u.Avatar = "U"
		if r, _ := utf8.DecodeRuneInString(u.FullName); r != utf8.RuneError {
			u.Avatar = strings.ToUpper(string(r))
		}
	}
}

// RecomputeLevel maps accumulated points onto the gardener level ladder.
// Callers invoke it explicitly whenever points change; it is never applied
// implicitly on save.
func (u *User) RecomputeLevel() {
	switch {
	case u.Points < 500:
		u.Level = "Budding Gardener"
	case u.Points < 1500:
		u.Level = "Growing Gardener"
	case u.Points < 3000:
		u.Level = "Blooming Gardener"
	case u.Points < 5000:
		u.Level = "Expert Gardener"
	default:
		u.Level = "Master Gardener"
	}
}
