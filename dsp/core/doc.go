// Package core holds the small numeric helpers, configuration error types and
// processor options shared by every package of the delay engine.
package core
