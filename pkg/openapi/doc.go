// Package openapi turns the JSON request body of an OpenAPI 3 operation into
// a form schema. Documents are read from files or an fs.FS and parsed with
// kin-openapi; only the operation metadata needed to build a form is kept.
package openapi
