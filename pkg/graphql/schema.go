// Package graphql builds the read-only catalog schema served at
// POST /graphql. The marketplace exposes queries only; writes go through
// the REST surface.
package graphql

import "github.com/graphql-go/graphql"

// NewSchema builds a query-only schema around the given root object.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// MustSchema is NewSchema for boot-time wiring, where a malformed schema
// is a programming error.
func MustSchema(query *graphql.Object) graphql.Schema {
	schema, err := NewSchema(query)
	if err != nil {
		panic(err)
	}
	return schema
}
