// Package dictionary loads the proper-noun glossary that keeps character
// and place names spelled the same way across the whole corpus. The glossary
// is loaded once per run and embedded verbatim into every translation prompt.
package dictionary
