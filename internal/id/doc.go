// Package id generates the short random identifiers this module hands
// out when a request doesn't supply its own: default service IDs
// assigned at load time (pkg/config), and invocation IDs assigned at
// dispatch time (pkg/engine) when neither the operation's idPath nor
// the request path yields one. Short uses crypto/rand for secure randomness.
package id
