// Package engine implements the REST mock dispatch pipeline: given an
// incoming request against a virtualized service, it resolves the
// operation, computes a dispatch criterion, selects (or proxies) a
// response, renders it through the template engine, enforces any
// configured delay, and accounts for the invocation.
//
// Handler.ServeHTTP is the pipeline's single entry point; selector.go,
// proxy_decider.go, render.go, delay.go, accounting.go, and cors.go each
// implement one stage, mirroring the nine-component breakdown the
// pipeline composes.
package engine
