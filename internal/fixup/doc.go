// Package fixup repairs already translated text without calling the model
// again. One pass cuts every target string at a stray "###" marker, the
// other rewrites known mistranslated names through a correction map. Both
// passes converge: running them twice changes nothing the second time.
package fixup
