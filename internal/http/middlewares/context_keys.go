package middlewares

// Keys under which middleware stores values on the gin context.
type contextKey string

const (
	CtxRequestID     contextKey = "request_id"
	CtxAdminUsername contextKey = "admin_username"
)
