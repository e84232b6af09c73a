package models

import "time"

// DefaultDepartments is the routing set used when no override is configured.
var DefaultDepartments = []string{
	"Technical Support",
	"Billing",
	"Customer Service",
	"Shipping",
	"General Queries",
}

const DefaultDepartment = "General Queries"

// ComplaintRecord is one stored customer submission. Records are append-only:
// once inserted they are never updated or deleted.
type ComplaintRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	MobileNumber string    `json:"mobile_number"`
	EmailID      string    `json:"email_id"`
	Complaint    string    `json:"complaint"`
	Department   string    `json:"department"`
	Timestamp    time.Time `json:"timestamp"`
}

// IsKnownDepartment reports whether dept is a member of departments.
func IsKnownDepartment(dept string, departments []string) bool {
	for _, d := range departments {
		if d == dept {
			return true
		}
	}
	return false
}
