package hostel

import (
	"time"

	"gorm.io/datatypes"
)

type Facility struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

type Hostel struct {
	ID                 string                         `gorm:"primaryKey;type:varchar(36)"`
	Name               string                         `gorm:"column:name;not null"`
	Code               string                         `gorm:"column:code;not null;uniqueIndex"`
	Gender             string                         `gorm:"column:gender;not null;index"`
	Type               string                         `gorm:"column:type;not null"`
	Capacity           int                            `gorm:"column:capacity;not null"`
	CurrentOccupancy   int                            `gorm:"column:current_occupancy;not null"`
	Floors             int                            `gorm:"column:floors;not null"`
	RoomsPerFloor      int                            `gorm:"column:rooms_per_floor;not null"`
	InchargeID         *string                        `gorm:"column:incharge_id"`
	WardenID           *string                        `gorm:"column:warden_id"`
	HostelRepID        *string                        `gorm:"column:hostel_rep_id"`
	MessRepID          *string                        `gorm:"column:mess_rep_id"`
	ContactNumber      string                         `gorm:"column:contact_number"`
	Address            string                         `gorm:"column:address"`
	Facilities         datatypes.JSONType[[]Facility] `gorm:"column:facilities"`
	IsActive           bool                           `gorm:"column:is_active;not null"`
	IsUnderMaintenance bool                           `gorm:"column:is_under_maintenance;not null"`
	CreatedAt          time.Time                      `gorm:"column:created_at"`
	UpdatedAt          time.Time                      `gorm:"column:updated_at"`
}

func (Hostel) TableName() string {
	return "hostels"
}
