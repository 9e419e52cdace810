package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ComputerSystems describes lab machines in a room. Availability is the flag
// that matters; count is informational and may be zero even when available.
type ComputerSystems struct {
	Available bool `json:"available"`
	Count     int  `json:"count"`
}

// RoomEquipment lists the capabilities a room offers.
type RoomEquipment struct {
	Projector       bool            `json:"projector"`
	SmartBoard      bool            `json:"smartBoard"`
	AirConditioning bool            `json:"ac"`
	AudioSystem     bool            `json:"audioSystem"`
	ComputerSystems ComputerSystems `json:"computerSystems"`
}

// Value implements driver.Valuer so equipment persists as a JSONB column.
func (e RoomEquipment) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner for the JSONB equipment column.
func (e *RoomEquipment) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = RoomEquipment{}
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported equipment column type %T", src)
	}
}

// Room represents a bookable teaching space.
type Room struct {
	ID        string        `db:"id" json:"id"`
	Number    string        `db:"number" json:"number"`
	Building  string        `db:"building" json:"building"`
	Type      string        `db:"type" json:"type"`
	Capacity  int           `db:"capacity" json:"capacity"`
	Block     *string       `db:"block" json:"block,omitempty"`
	Equipment RoomEquipment `db:"equipment" json:"equipment"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Building  string
	Type      string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
