package model

// Appointment books one slot (Date, Time) for a client.
// Date is always the canonical YYYY-MM-DD form and Time an "HH:MM" slot.
// Place is the catalog name at booking time; it is not a foreign key.
type Appointment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Place string `json:"place"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// Slot returns the (date, time) pair identifying the booked period.
func (a *Appointment) Slot() string {
	return a.Date + " " + a.Time
}
