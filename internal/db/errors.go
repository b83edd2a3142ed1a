package db

// Op constants name driver operations for error context.
const (
	OpPing        = "PING"
	OpRPush       = "RPUSH"
	OpLRange      = "LRANGE"
	OpCreateItem  = "CreateItem"
	OpQueryItems  = "QueryItems"
	OpReadItems   = "ReadContainer"
	OpInsert      = "INSERT"
	OpSelect      = "SELECT"
	OpApplySchema = "SCHEMA"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
