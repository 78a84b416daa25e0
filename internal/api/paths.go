// Package api provides the client for the chat backend's REST endpoints.
package api

// GJSON paths for extracting values from backend responses.
const (
	PathUserID    = "user_id"
	PathDetail    = "detail"
	PathResponse  = "response"
	PathSessionID = "session_id"
	PathMessages  = "messages"
	PathSessions  = "sessions"
	PathStatus    = "status"

	// Relative to a message object
	PathMsgRole    = "role"
	PathMsgContent = "content"

	// Relative to a session object
	PathSessID      = "id"
	PathSessCreated = "created_at"
	PathSessUpdated = "updated_at"
	PathSessSummary = "summary"

	// FastAPI validation errors carry a list under "detail"
	PathDetailFirstMsg = "detail.0.msg"
)
