// Package client is a thin JSON client for the verikeep REST API. It keeps
// the bearer token obtained from verify-email or login and attaches it to
// calls on protected routes.
package client
