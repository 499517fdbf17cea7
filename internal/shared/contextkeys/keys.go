package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "deptsite context key " + string(c)
}

// UserIDKey is the key for the authenticated user's ID in context.Context
const UserIDKey = contextKey("userID")

// UserEmailKey is the key for the authenticated user's email in context.Context
const UserEmailKey = contextKey("userEmail")

// UserRoleKey is the key for the authenticated user's role in context.Context
const UserRoleKey = contextKey("userRole")

// RequestIDKey is the key for the per-request correlation ID in context.Context
const RequestIDKey = contextKey("requestID")

// CollectionKey is the key for the target collection name in context.Context
const CollectionKey = contextKey("collection")
