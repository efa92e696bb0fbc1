package models

// Career represents a degree program offered at a campus. Careers are
// seeded reference data and read-only in normal operation.
type Career struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Campus string `db:"campus" json:"campus"`
}
