package dispatch

// HealthResponse is the liveness probe reply.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Healthy reports whether the service declared itself ready.
func (h *HealthResponse) Healthy() bool { return h.Status == "healthy" }

// TestConnectionRequest carries the credentials for a connection test.
type TestConnectionRequest struct {
	Email       string `json:"email"`
	AppPassword string `json:"appPassword"`
}

// TestConnectionResponse is the connection test reply.
type TestConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendRequest is the single batch submission for a whole campaign.
type SendRequest struct {
	SenderEmail string
	AppPassword string
	Subject     string // subject pattern, rendered per contact remotely
	Body        string // body pattern, rendered per contact remotely
	ResumeName  string
	Resume      []byte
	ContactsCSV string // contact list re-serialized as quoted name,email,company CSV
}

// SendOutcome is one per-contact delivery result, aligned positionally
// with the submitted contact order.
type SendOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendResponse is the batch submission reply.
type SendResponse struct {
	Successful int           `json:"successful"`
	Results    []SendOutcome `json:"results"`
}

// errorBody is the collaborator's failure payload convention: a message or
// error field, either of which may be present.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
