// Package main hosts the kouri CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// configured chat-completion endpoint: connectivity tests, character profile
// generation and polishing, image recognition and generation, and
// configuration maintenance. It centralizes configuration resolution, logger
// setup, and failure reporting so subcommands stay small.
//
// Keep this package lean: add behaviour to the internal packages first, then
// surface it here through a command or a shell verb.
package main
