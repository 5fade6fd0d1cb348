// Package batch reads explicit lists of dialogue files so a run can target
// a hand-picked subset of the corpus instead of whole roots.
package batch
