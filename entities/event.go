package entities

import "time"

// DanceEvent is a one-off ticketed event (showcase, social, workshop),
// as opposed to recurring class schedules.
type DanceEvent struct {
	EventID     string    `json:"event_id" db:"event_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Venue       string    `json:"venue" db:"venue"`
	Capacity    int       `json:"capacity" db:"capacity"`
	Price       Money     `json:"price" db:"price"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// SoldTickets counts PENDING and CONFIRMED tickets.
	SoldTickets      int `json:"sold_tickets" db:"sold_tickets"`
	AvailableTickets int `json:"available_tickets" db:"-"`
}

type DanceEventCreateResponse struct {
	EventID string `json:"event_id"`
}
