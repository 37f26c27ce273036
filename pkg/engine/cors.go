package engine

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/svcmock/restdispatch/pkg/config"
)

// corsAllowMethods is the fixed method list the CORS pre-flight handler
// advertises.
const corsAllowMethods = "POST, PUT, GET, OPTIONS, DELETE, PATCH"

// corsMaxAge is the fixed Access-Control-Max-Age value, in seconds.
const corsMaxAge = "3600"

// writeCORSPreflight synthesizes the 204 pre-flight response of spec
// §4.10, echoing the request's Access-Control-Request-Headers back as
// both Allow-Headers and Expose-Headers.
//
// The credentials header is intentionally spelled "Access-Allow-Credentials"
// rather than the standard "Access-Control-Allow-Credentials" (see DESIGN.md).
func writeCORSPreflight(w http.ResponseWriter, r *http.Request, cors config.CORSConfig) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", cors.AllowedOrigins)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)

	if requested := r.Header.Values("Access-Control-Request-Headers"); len(requested) > 0 {
		echoed := strings.Join(requested, ", ")
		h.Set("Access-Control-Allow-Headers", echoed)
		h.Set("Access-Control-Expose-Headers", echoed)
	}

	h.Set("Access-Allow-Credentials", strconv.FormatBool(cors.AllowCredentials))
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Vary", "Accept-Encoding, Origin")

	w.WriteHeader(http.StatusNoContent)
}
