// Package translation turns one Japanese string into one English string by
// calling a remote chat completion model. The system instruction embeds the
// proper-noun dictionary so names come back with their canonical spelling.
// Clients exist for OpenAI-compatible endpoints and for Gemini, and a
// circuit breaker can be layered on top for long unattended runs.
package translation
