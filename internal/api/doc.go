// Package api serves a small JSON control surface over running triggers
// and the adaptation history:
//
//	GET  /api/v1/health
//	GET  /api/v1/triggers
//	GET  /api/v1/triggers/{id}
//	POST /api/v1/triggers/{id}/disable
//	GET  /api/v1/adaptations?limit=N
//
// Every response uses the same envelope with a status, request ID,
// timestamp, data and error.
package api
