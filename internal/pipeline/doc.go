// Package pipeline translates dialogue records field by field. A
// FieldTranslator decides whether a single field needs a request, and a
// RecordPipeline walks every entry of one file and saves it once.
package pipeline
