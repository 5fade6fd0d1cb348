// Package cli provides command-line interface setup and configuration
// for the storytl application. It handles flag parsing, command
// creation, and configuration management using cobra and viper, and
// builds the Runtime every command works from.
package cli
