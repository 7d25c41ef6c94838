package models

import "time"

// Package is a service plan in the catalog.
type Package struct {
	ID    string `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	Name  string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Speed string `gorm:"column:speed;type:varchar(64)" json:"speed"`
	Cost  int64  `gorm:"column:cost;type:bigint;not null" json:"cost"`
	// SubscriberCount is derived from subscribers referencing this package.
	// Only the reconciliation count sync writes it.
	SubscriberCount int64     `gorm:"column:subscriber_count;type:bigint;not null;default:0" json:"subscriber_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Package) TableName() string {
	return "package"
}
