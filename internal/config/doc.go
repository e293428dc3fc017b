// Package config defines the format-agnostic input model of a compilation:
// the parsed types, fields and directives of an annotated schema, plus the
// API-level settings (authorization, conflict detection) that accompany it.
//
// The `config.Model` is the single source of truth for the `compiler`
// package. Concrete loaders, such as the HCL one, live in separate packages.
package config
