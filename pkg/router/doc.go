// Package router runs the single task that turns inbound hub frames into
// gesture recognizer lifecycles. It owns the RecognizerEntry table (one
// entry per remote with an in-progress gesture) and is the table's only
// writer; each recognizer task only touches the RemoteState it was handed.
package router
