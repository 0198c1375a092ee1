package dto

// Status is the flat response contract shared by every endpoint.
// Business and validation failures answer HTTP 200 with Success false
// and the user-facing message in Error; HTTP error statuses are
// reserved for transport-level problems.
type Status struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
