package models

import "time"

// Teacher represents a registered teacher account.
type Teacher struct {
	ID            int64     `db:"id" json:"id"`
	PayrollNumber string    `db:"payroll_number" json:"payrollNumber"`
	FullName      string    `db:"full_name" json:"fullName"`
	Campus        string    `db:"campus" json:"campus"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	CareerID      int64     `db:"career_id" json:"careerId"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
