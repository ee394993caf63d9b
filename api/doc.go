// Package api defines the request and response types of the StudyFlow HTTP API.
//
// # API Overview
//
//   - POST /api/v1/tasks   submit a tutoring task and receive the model's answer
//   - GET  /api/v1/agents  list the available agent profiles
//   - GET  /health         liveness, including whether the model credential is configured
//   - GET  /ready          readiness of external dependencies (Redis when enabled)
//   - GET  /metrics        Prometheus metrics
//
// # Errors
//
// Failures use the common envelope {"success": false, "error": {...}}.
// RATE_LIMITED maps to 429 with a fixed overload message,
// CONFIGURATION_MISSING to 503, INVALID_REQUEST to 400 and any other
// upstream failure to 502.
//
// # Base URL
//
//	http://localhost:8080
package api
