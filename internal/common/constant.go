package common

// AuthorizationHeader and BearerScheme describe how clients present
// session tokens to protected endpoints.
const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)
