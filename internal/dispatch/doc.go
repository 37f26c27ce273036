// Package dispatch implements the six dispatch-criterion evaluators
// (SEQUENCE, URI_PARTS, URI_PARAMS, URI_ELEMENTS, SCRIPT, JSON_BODY) that
// turn an incoming request into the string key used to look up a canned
// response. Evaluation failures are logged and swallowed: they yield a
// null criterion rather than an error, per the dispatcher's documented
// error policy.
package dispatch
