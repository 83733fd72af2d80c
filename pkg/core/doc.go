// Package core defines the shared language of runlens.
//
// This package contains:
//   - The JSON-like Value model with order-preserving mappings
//   - Documents and panel descriptors as served for a run
//   - File references and run keys
//   - Service interfaces (Store, DocumentSource)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
