package services

// ServiceError carries an HTTP status alongside a caller-safe message.
// Detailed causes are logged server-side, never returned to end users.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}
