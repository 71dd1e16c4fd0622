package posterminal

import (
	"time"

	"github.com/google/uuid"
)

// PosTerminal is a card terminal at the cash desk. IPAddress+Port identify
// the device on the clinic network and must be unique among non-deleted
// terminals. At most one terminal is the default at any time.
type PosTerminal struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Provider   string     `db:"provider" json:"provider"`
	Protocol   string     `db:"protocol" json:"protocol"`
	IPAddress  string     `db:"ip_address" json:"ip_address"`
	MACAddress *string    `db:"mac_address" json:"mac_address,omitempty"`
	Port       int        `db:"port" json:"port"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	IsDefault  bool       `db:"is_default" json:"is_default"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	CreatedBy  uuid.UUID  `db:"created_by" json:"created_by"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy  *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted  bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy  *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
}
