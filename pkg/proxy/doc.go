// Package proxy forwards a dispatched request to an upstream URL when
// the Proxy Decider (pkg/engine) determines the operation should not
// be served from a canned response. It is a plain forward proxy: no
// TLS interception, traffic recording, or filtering — those concerns
// belong to a full MITM proxy and are out of scope for a dispatch
// engine that only ever proxies requests it already failed to mock.
package proxy
