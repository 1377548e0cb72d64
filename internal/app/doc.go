// Package app wires the pipeline together: it owns the logger and the rule
// engine context, loads jobs and scenes and runs the assign and generate
// passes, decoupled from any specific entrypoint like a CLI.
package app
