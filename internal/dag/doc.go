// Package dag records the resources defined in one compilation and the
// dependsOn edges between them.
//
// It answers three questions for the compiler: does every reference resolve
// to a defined resource, is the dependency graph acyclic, and in which order
// should the resources be emitted. The order is a topological order that
// breaks ties by insertion order, so identical inputs always yield identical
// output.
package dag
