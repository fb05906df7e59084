// Package hostel manages hostel buildings: capacity, occupancy and the staff and
// student representatives attached to each one.
package hostel

import (
	"math"
	"strings"
	"time"

	hostelDatamodel "github.com/frahmantamala/hostel-management/internal/core/datamodel/hostel"
	"github.com/frahmantamala/hostel-management/internal/role"
	"gorm.io/datatypes"
)

type Facility = hostelDatamodel.Facility

type Hostel struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Code               string           `json:"code"`
	Gender             role.GenderScope `json:"gender"`
	Type               string           `json:"type"`
	Capacity           int              `json:"capacity"`
	CurrentOccupancy   int              `json:"currentOccupancy"`
	Floors             int              `json:"floors"`
	RoomsPerFloor      int              `json:"roomsPerFloor"`
	InchargeID         string           `json:"incharge,omitempty"`
	WardenID           string           `json:"warden,omitempty"`
	HostelRepID        string           `json:"hostelRepresentative,omitempty"`
	MessRepID          string           `json:"messRepresentative,omitempty"`
	ContactNumber      string           `json:"contactNumber,omitempty"`
	Address            string           `json:"address,omitempty"`
	Facilities         []Facility       `json:"facilities"`
	IsActive           bool             `json:"isActive"`
	IsUnderMaintenance bool             `json:"isUnderMaintenance"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// HostelResponse adds the derived capacity figures.
type HostelResponse struct {
	*Hostel
	AvailableCapacity   int     `json:"availableCapacity"`
	OccupancyPercentage float64 `json:"occupancyPercentage"`
}

func (h *Hostel) AvailableCapacity() int {
	if free := h.Capacity - h.CurrentOccupancy; free > 0 {
		return free
	}
	return 0
}

// OccupancyPercentage is rounded to two decimals; an empty building reads 0.
func (h *Hostel) OccupancyPercentage() float64 {
	if h.Capacity <= 0 {
		return 0
	}
	pct := float64(h.CurrentOccupancy) / float64(h.Capacity) * 100
	return math.Round(pct*100) / 100
}

func (h *Hostel) ToResponse() HostelResponse {
	return HostelResponse{
		Hostel:              h,
		AvailableCapacity:   h.AvailableCapacity(),
		OccupancyPercentage: h.OccupancyPercentage(),
	}
}

// TypeFor names the hostel type shown on invoices and tokens.
func TypeFor(g role.GenderScope) string {
	if g == role.ScopeBoys {
		return "Boys Hostel"
	}
	return "Girls Hostel"
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDataModel(h *Hostel) *hostelDatamodel.Hostel {
	facilities := h.Facilities
	if facilities == nil {
		facilities = []Facility{}
	}
	return &hostelDatamodel.Hostel{
		ID:                 h.ID,
		Name:               h.Name,
		Code:               NormalizeCode(h.Code),
		Gender:             string(h.Gender),
		Type:               h.Type,
		Capacity:           h.Capacity,
		CurrentOccupancy:   h.CurrentOccupancy,
		Floors:             h.Floors,
		RoomsPerFloor:      h.RoomsPerFloor,
		InchargeID:         optional(h.InchargeID),
		WardenID:           optional(h.WardenID),
		HostelRepID:        optional(h.HostelRepID),
		MessRepID:          optional(h.MessRepID),
		ContactNumber:      h.ContactNumber,
		Address:            h.Address,
		Facilities:         datatypes.NewJSONType(facilities),
		IsActive:           h.IsActive,
		IsUnderMaintenance: h.IsUnderMaintenance,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}

func FromDataModel(h *hostelDatamodel.Hostel) *Hostel {
	return &Hostel{
		ID:                 h.ID,
		Name:               h.Name,
		Code:               h.Code,
		Gender:             role.GenderScope(h.Gender),
		Type:               h.Type,
		Capacity:           h.Capacity,
		CurrentOccupancy:   h.CurrentOccupancy,
		Floors:             h.Floors,
		RoomsPerFloor:      h.RoomsPerFloor,
		InchargeID:         deref(h.InchargeID),
		WardenID:           deref(h.WardenID),
		HostelRepID:        deref(h.HostelRepID),
		MessRepID:          deref(h.MessRepID),
		ContactNumber:      h.ContactNumber,
		Address:            h.Address,
		Facilities:         h.Facilities.Data(),
		IsActive:           h.IsActive,
		IsUnderMaintenance: h.IsUnderMaintenance,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
	}
}
