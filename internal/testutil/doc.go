// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing canned model completions and analysis
// fixtures. These helpers are intentionally minimal and are not intended
// for production usage.
package testutil
