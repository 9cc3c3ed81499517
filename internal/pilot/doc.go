// Package pilot is the ground side of the control link: an HTTP client for
// /control and /sensor and a controller that keeps the link alive by
// resending the current stick state on a fixed interval.
package pilot
