// Package errors provides the classified error primitives used across prismicgen.
//
// A ClassifiedError carries a category, a severity, an advisory retry strategy
// and structured context. Errors are created through the fluent ErrorBuilder:
//
//	err := errors.NetworkError("content repository query failed").
//		WithCause(originalErr).
//		WithContext("endpoint", endpoint).
//		WithContext("page", page).
//		Build()
//
// The categories line up with the failure classes of a route generation run:
// configuration problems (CategoryConfig), repository query failures
// (CategoryNetwork, CategoryContent, CategoryAuth, CategoryNotFound) and
// resolver failures (CategoryResolver). CLIErrorAdapter maps them to exit codes.
package errors
