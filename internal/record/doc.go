// Package record models one dialogue file: the ordered entries of its
// "text" array, each with a speaker name, body text and up to two choices.
// Members the translator does not touch are carried through unchanged so a
// load/save round trip never loses data.
package record
