package model

import "gorm.io/gorm"

// OwnedBy scopes a query to records belonging to the given user. Every
// record handler applies it so ownership isolation holds uniformly instead
// of per hand-written query.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Active scopes a query to records not soft-deleted via the is_active flag
func Active() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true)
	}
}
