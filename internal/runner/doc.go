// Package runner coordinates a fixed pool of workers driving a Requester
// until a request-count target is reached or a wall-clock duration elapses.
package runner
