package domain

import "time"

// Partner is the physical pickup location fulfilling a booking. The core
// treats it as a flat reference.
type Partner struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedOn time.Time `json:"created_on"`
}
