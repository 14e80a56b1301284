package models

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification is a user-visible message (a toast on the client).
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// CompareResult reports the outcome of adding a product to the comparison list.
type CompareResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
