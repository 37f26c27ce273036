// Package matching implements the URI pattern algorithms behind operation
// resolution and the SEQUENCE/URI_PARTS/URI_PARAMS/URI_ELEMENTS dispatch
// strategies, plus JSON pointer evaluation for the JSON_BODY strategy.
package matching
