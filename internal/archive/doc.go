// Package archive keeps timestamped copies of files before a cleanup pass
// rewrites them.
package archive
