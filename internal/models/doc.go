// Package models lists the model identifiers served by the configured
// OpenAI-compatible endpoint, so the right value for server.model can be
// picked without guessing.
package models
