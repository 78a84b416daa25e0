// Package models contains data types and constants for the chat backend.
package models

// DefaultBaseURL is where the backend listens unless configured otherwise
const DefaultBaseURL = "http://localhost:8000"

// Endpoint paths, relative to the backend base URL
const (
	EndpointLogin         = "/login"
	EndpointRegister      = "/register"
	EndpointChat          = "/chat"
	EndpointSaveSession   = "/save-session"
	EndpointUpdateSession = "/update-session" // + "/{session_id}"
	EndpointActiveSession = "/active-session" // + "/{user_id}"
	EndpointSessions      = "/sessions"       // + "/{user_id}"
	EndpointSession       = "/session"        // + "/{session_id}"
	EndpointHealth        = "/health"
)

// IdentityKey is the durable storage key holding the authenticated user id
const IdentityKey = "user_id"

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "chatweb/0.1",
	}
}
