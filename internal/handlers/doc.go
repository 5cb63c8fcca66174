// Package handlers maps node kinds to the Go functions that implement them.
//
// Modules register a RegisteredHandler per kind; the Dispatcher is the
// traversal.Work that looks the handler up by the node's kind, decodes the
// node's arguments into the handler's input struct and calls it. Input
// structs use `arg` tags:
//
//	type Input struct {
//	    Message string        `arg:"message"`
//	    Delay   time.Duration `arg:"delay"`
//	}
//
// Unknown arguments are an error. Strings are converted to durations, and
// numbers to the field's numeric type.
package handlers
