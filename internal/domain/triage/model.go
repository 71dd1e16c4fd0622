package triage

import (
	"time"

	"github.com/google/uuid"
)

// Vitals is the measurement set taken at triage intake.
type Vitals struct {
	HeartRate        int     `json:"heart_rate" validate:"gte=0,lte=300"`
	RespiratoryRate  int     `json:"respiratory_rate" validate:"gte=0,lte=120"`
	SystolicBP       int     `json:"systolic_bp" validate:"gte=0,lte=300"`
	DiastolicBP      int     `json:"diastolic_bp" validate:"gte=0,lte=200"`
	Temperature      float64 `json:"temperature" validate:"gte=25,lte=45"`
	OxygenSaturation int     `json:"oxygen_saturation" validate:"gte=0,lte=100"`
	GlasgowComaScore int     `json:"glasgow_coma_score" validate:"gte=3,lte=15"`
	PainScale        int     `json:"pain_scale" validate:"gte=0,lte=10"`
}

// TriageRecord stores the intake assessment. ESILevel keeps the computed
// acuity; nurses may override it toward more acute only.
type TriageRecord struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ReceptionID    *uuid.UUID `db:"reception_id" json:"reception_id,omitempty"`
	ChiefComplaint string     `db:"chief_complaint" json:"chief_complaint"`
	Vitals
	ESILevel   int        `db:"esi_level" json:"esi_level"`
	NurseID    uuid.UUID  `db:"nurse_id" json:"nurse_id"`
	TriageTime time.Time  `db:"triage_time" json:"triage_time"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	CreatedBy  uuid.UUID  `db:"created_by" json:"created_by"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy  *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted  bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy  *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
}
