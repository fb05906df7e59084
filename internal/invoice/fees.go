package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Fees is the hostel fee breakdown printed on every invoice.
type Fees struct {
	AdmissionFee         decimal.Decimal `json:"admissionFee"`
	AmenitiesFund        decimal.Decimal `json:"amenitiesFund"`
	BlockAdvance         decimal.Decimal `json:"blockAdvance"`
	RoomRent             decimal.Decimal `json:"roomRent"`
	ElectricityCharges   decimal.Decimal `json:"electricityCharges"`
	WaterCharges         decimal.Decimal `json:"waterCharges"`
	EstablishmentCharges decimal.Decimal `json:"establishmentCharges"`
	MessAdvance          decimal.Decimal `json:"messAdvance"`
}

type FeeLine struct {
	Label  string
	Amount decimal.Decimal
}

// ScheduleTotal is the amount a completed registration pays.
var ScheduleTotal = decimal.NewFromInt(46800)

// Schedule returns the fixed fee schedule. A fresh value is returned so callers
// cannot alter the shared one.
func Schedule() Fees {
	return Fees{
		AdmissionFee:         decimal.NewFromInt(500),
		AmenitiesFund:        decimal.NewFromInt(600),
		BlockAdvance:         decimal.NewFromInt(5000),
		RoomRent:             decimal.NewFromInt(600),
		ElectricityCharges:   decimal.NewFromInt(600),
		WaterCharges:         decimal.NewFromInt(500),
		EstablishmentCharges: decimal.NewFromInt(15000),
		MessAdvance:          decimal.NewFromInt(24000),
	}
}

func (f Fees) Lines() []FeeLine {
	return []FeeLine{
		{Label: "Admission Fee", Amount: f.AdmissionFee},
		{Label: "Amenities Fund", Amount: f.AmenitiesFund},
		{Label: "Block Advance", Amount: f.BlockAdvance},
		{Label: "Room Rent", Amount: f.RoomRent},
		{Label: "Electricity Charges", Amount: f.ElectricityCharges},
		{Label: "Water Charges", Amount: f.WaterCharges},
		{Label: "Establishment Charges", Amount: f.EstablishmentCharges},
		{Label: "Mess Advance", Amount: f.MessAdvance},
	}
}

func (f Fees) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range f.Lines() {
		total = total.Add(line.Amount)
	}
	return total
}

// Verify checks that no component is negative and the components add up to
// ScheduleTotal.
func (f Fees) Verify() error {
	for _, line := range f.Lines() {
		if line.Amount.IsNegative() {
			return fmt.Errorf("fee %q is negative", line.Label)
		}
	}
	if total := f.Total(); !total.Equal(ScheduleTotal) {
		return fmt.Errorf("fee total %s does not match schedule total %s", total, ScheduleTotal)
	}
	return nil
}
