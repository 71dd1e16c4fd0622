package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	FileNumber string     `db:"file_number" json:"file_number"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	NationalID *string    `db:"national_id" json:"national_id,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	Note       *string    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	CreatedBy  uuid.UUID  `db:"created_by" json:"created_by"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy  *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted  bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy  *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
