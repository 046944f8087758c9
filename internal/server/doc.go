// Package server exposes the record stores over HTTP.
//
// Writes go through a dual-write coordinator; reads and the HTML views are
// served from the primary store only. JSON endpoints always answer with a
// JSON body, errors included:
//
//	400  malformed or invalid request body, bad identifier in the path
//	404  unknown route, or the log to delete does not exist
//	409  identifier already taken
//	422  camp references a log the primary store does not hold
//	500  anything else
//
// The HTML views answer failures in plain text since they are read by
// people.
package server
