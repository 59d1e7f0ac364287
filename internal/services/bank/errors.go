package bank

// BankError represents a bank service error
type BankError string

// Error implements the error interface
func (e BankError) Error() string {
	return string(e)
}

const (
	// ErrInvalidRequest is returned when request parameters fail validation
	ErrInvalidRequest = BankError("invalid request")

	// ErrRoomNotFound is returned when the room does not exist
	ErrRoomNotFound = BankError("room not found")

	// ErrPlayerNotFound is returned when no player matches the given name
	ErrPlayerNotFound = BankError("player not found")

	// ErrDebtNotFound is returned when a debt cannot be resolved by id or
	// index. Callers treat it as a bad request rather than a missing
	// resource: the usual cause is settling a debt someone else already
	// settled.
	ErrDebtNotFound = BankError("debt not found")

	// ErrUnauthorized is returned when an operation requires the admin role
	ErrUnauthorized = BankError("unauthorized")
)
