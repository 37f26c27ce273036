// Package template renders mock response bodies and headers with
// variable substitution like {{now}}, {{uuid}},
// {{request.body.field}}.
//
// # Built-in Variables
//
// Time-related:
//   - {{now}} - Current time in RFC3339 format
//   - {{timestamp}} - Current Unix timestamp
//   - {{timestamp.iso}}, {{timestamp.unix}}, {{timestamp.unix_ms}}
//
// Random values:
//   - {{uuid}} - Random UUID v4
//   - {{uuid.short}} - First 8 characters of a UUID v4
//   - {{random}} - Random 8-character hex string
//   - {{random.string}} / {{random.string(N)}}
//   - {{random.int}} / {{random.int(min, max)}}
//   - {{random.float}} / {{random.float(min, max)}} / {{random.float(min, max, precision)}}
//
// Realistic sample data via {{faker.*}} (name, email, address, phone,
// company, word, sentence, ipv4, credit_card, price, ssn, and more —
// see resolveFaker).
//
// # Request Variables
//
// The {{request.*}} prefix exposes the request the operation matched:
//   - {{request.method}} - HTTP method
//   - {{request.path}} - Request path
//   - {{request.rawBody}} - Raw request body
//   - {{request.body.field}} - Parsed JSON body field, dot notation
//   - {{request.query.param}} - Query parameter value
//   - {{request.header.name}} - Request header value
//   - {{request.pathVariable.name}} - Path variable extracted by the operation pattern
//
// The {{requestContext.*}} prefix exposes whatever a SCRIPT dispatcher
// wrote via requestContext.Set(key, value) before the response was
// selected (see internal/dispatch), letting the rendered body reflect
// state a dispatch script computed.
//
// # Functions
//
//   - {{upper(value)}} or {{upper value}} - Convert to uppercase
//   - {{lower(value)}} or {{lower value}} - Convert to lowercase
//   - {{default(value, "fallback")}} or {{default value "fallback"}} - Use fallback if value is empty
//
// default resolves its first argument as a context path (request.*,
// requestContext.*, faker.*, uuid, now, timestamp*) and returns the
// fallback string if the resolved value is empty.
//
// # Sequences
//
// Auto-incrementing counters, independent per name, persisting for the
// lifetime of the engine instance:
//   - {{sequence("name")}} - counter starting at 1
//   - {{sequence("name", start)}} - counter starting at start
package template
