// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App either computes one plan from manifest files and prints it, or
// serves plans over HTTP next to health and metrics endpoints.
package app
