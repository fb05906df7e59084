package hostel

import (
	"github.com/frahmantamala/hostel-management/internal"
	"github.com/frahmantamala/hostel-management/internal/core/common/validation"
)

type CreateHostelDTO struct {
	Name          string     `json:"name"`
	Code          string     `json:"code"`
	Gender        string     `json:"gender"`
	Capacity      int        `json:"capacity"`
	Floors        int        `json:"floors"`
	RoomsPerFloor int        `json:"roomsPerFloor"`
	WardenID      string     `json:"warden"`
	ContactNumber string     `json:"contactNumber"`
	Address       string     `json:"address"`
	Facilities    []Facility `json:"facilities"`
}

func (d CreateHostelDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("code", d.Code).Required().MaxLength(20)
	v.Field("gender", d.Gender).Required().OneOf("boys", "girls")
	v.Field("capacity", d.Capacity).Required().IntRange(1, 10000)
	v.Field("floors", d.Floors).IntRange(0, 50)
	v.Field("roomsPerFloor", d.RoomsPerFloor).IntRange(0, 500)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateOccupancyDTO struct {
	CurrentOccupancy *int `json:"currentOccupancy"`
}

func (d UpdateOccupancyDTO) Validate() error {
	if d.CurrentOccupancy == nil {
		return internal.NewValidationFieldError("currentOccupancy", "currentOccupancy is required", internal.ErrCodeValidationFailed)
	}
	if *d.CurrentOccupancy < 0 {
		return internal.NewValidationFieldError("currentOccupancy", "currentOccupancy cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// AssignRepresentativesDTO names the student accounts to seat. An omitted field
// leaves that seat unchanged.
type AssignRepresentativesDTO struct {
	HostelRepresentativeID *string `json:"hostelRepresentative"`
	MessRepresentativeID   *string `json:"messRepresentative"`
}

func (d AssignRepresentativesDTO) Validate() error {
	if d.HostelRepresentativeID == nil && d.MessRepresentativeID == nil {
		return internal.NewValidationError("At least one representative is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// RepresentativeHostel is what a representative sees about their own hostel.
type RepresentativeHostel struct {
	Hostel HostelResponse `json:"hostel"`
	Seat   string         `json:"representativeType"`
}
