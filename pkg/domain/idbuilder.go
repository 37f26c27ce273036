package domain

// BuildOperationID computes the canonical key used to look up responses
// for an operation: the owning service's storage id, a dash, and the
// operation's name (its full "<VERB> <pattern>" form).
func BuildOperationID(service Service, operation Operation) string {
	return service.ID + "-" + operation.Name
}
