// Package httpclient builds outgoing HTTP requests from a run configuration
// and constructs the tuned http.Client shared by all workers.
package httpclient
