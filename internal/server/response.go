package server

// Status is the status field of a JSON reply.
type Status string

const (
	// StatusOK is used for health-check responses.
	StatusOK Status = "OK"

	// StatusError indicates a request failed.
	StatusError Status = "error"
)

// Response is the body of health and error replies. Successful sweeps return
// the run itself.
type Response struct {
	Status Status `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewOKResponse returns a health-check reply.
func NewOKResponse() Response {
	return Response{Status: StatusOK}
}

// NewErrorResponse returns an error reply carrying err.
func NewErrorResponse(err string) Response {
	return Response{Status: StatusError, Error: err}
}
