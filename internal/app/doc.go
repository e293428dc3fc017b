// Package app contains the application logic around one compilation. It
// defines the App struct and its configuration, loads the manifests, runs
// the compiler and writes the output document, decoupled from any specific
// entrypoint like a CLI.
package app
