package model

// Session is the request-scoped proof of identity derived from a signed
// token. It is never persisted; its lifetime is a single request.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAnonymous reports whether no identity was resolved for the request.
func (s *Session) IsAnonymous() bool {
	return s == nil || s.Email == ""
}
