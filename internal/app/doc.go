// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle: finding
// settings files, expanding them, and delivering the results, decoupled
// from any specific entrypoint like a CLI.
package app
