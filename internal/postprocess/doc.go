// Package postprocess normalizes raw model output before it is stored:
// it cuts off echoed prompt scaffolding, folds line breaks and trims.
package postprocess
