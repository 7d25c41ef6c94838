package models

import "time"

// CurrentSchemaVersion is bumped whenever the persisted layout changes.
const CurrentSchemaVersion = 1

type SchemaMeta struct {
	Key       string `gorm:"column:meta_key;type:varchar(64);primary_key"`
	Version   int    `gorm:"column:version;not null"`
	UpdatedAt time.Time
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
