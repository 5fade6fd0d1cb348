// Package chardict maintains the character and system text dictionary, a
// flat registry of short strings keyed by character id and text id. New
// pairs are translated and merged into the previously saved dictionary
// without ever touching existing values.
package chardict
