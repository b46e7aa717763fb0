// Package objects contains the wire objects shared by the API handlers
// and biz layer. They live here to avoid circular dependencies between
// the two.
package objects
