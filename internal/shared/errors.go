package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrDatabaseUnavailable = fmt.Errorf("database unavailable")
	ErrSchemaInit          = fmt.Errorf("schema initialization failed")

	// Webhook errors
	ErrInvalidSignature = fmt.Errorf("invalid webhook signature")
	ErrMalformedEvent   = fmt.Errorf("malformed webhook event")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
