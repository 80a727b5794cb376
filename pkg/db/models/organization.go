package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

// Organization is either a restaurant or a supplier. The engine reads it
// only to verify existence and type before a run.
type Organization struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string        `gorm:"column:name;not null"`
	Type      enums.OrgType `gorm:"column:type;type:text;not null"`
	Active    bool          `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
