package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON member names used by the dialogue files
const (
	KeySourceName  = "jpName"
	KeyTargetName  = "enName"
	KeySourceText  = "jpText"
	KeyTargetText  = "enText"
	KeyChoices     = "choices"
	KeyText        = "text"
	KeyTargetTitle = "enTitle"
)

// Field selects one translatable unit of an entry
type Field int

const (
	FieldName Field = iota
	FieldBody
	FieldChoice0
	FieldChoice1
)

// Fields lists the fields in the order the pipeline visits them
var Fields = []Field{FieldName, FieldBody, FieldChoice0, FieldChoice1}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldBody:
		return "body"
	case FieldChoice0:
		return "choice[0]"
	case FieldChoice1:
		return "choice[1]"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Choice is one selectable answer inside an entry
type Choice struct {
	fields object
}

// SourceText returns the Japanese choice text
func (c *Choice) SourceText() (string, bool) {
	return c.fields.getString(KeySourceText)
}

// TargetText returns the English choice text
func (c *Choice) TargetText() (string, bool) {
	return c.fields.getString(KeyTargetText)
}

// SetTargetText stores the English choice text
func (c *Choice) SetTargetText(s string) {
	c.fields.setString(KeyTargetText, s)
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	return c.fields.UnmarshalJSON(data)
}

func (c Choice) MarshalJSON() ([]byte, error) {
	return c.fields.MarshalJSON()
}

// Entry is one unit of dialogue: speaker name, body text and optional choices
type Entry struct {
	fields  object
	choices []*Choice
	// hasChoices is false when the entry carries no choices array at all
	hasChoices bool
}

// NewEntry builds an entry with empty target fields
func NewEntry(sourceName, sourceText string, choices ...string) *Entry {
	e := &Entry{}
	e.fields.setString(KeySourceName, sourceName)
	e.fields.setString(KeyTargetName, "")
	e.fields.setString(KeySourceText, sourceText)
	e.fields.setString(KeyTargetText, "")
	if len(choices) > 0 {
		e.hasChoices = true
		for _, text := range choices {
			c := &Choice{}
			c.fields.setString(KeySourceText, text)
			c.fields.setString(KeyTargetText, "")
			e.choices = append(e.choices, c)
		}
	}
	return e
}

// Choices returns the entry's choices; nil when the entry has none
func (e *Entry) Choices() []*Choice {
	return e.choices
}

// Has reports whether the field exists in this entry's shape. Name and
// body always exist; choice fields exist only when enough choices do.
func (e *Entry) Has(f Field) bool {
	switch f {
	case FieldName, FieldBody:
		return true
	case FieldChoice0:
		return len(e.choices) >= 1
	case FieldChoice1:
		return len(e.choices) >= 2
	}
	return false
}

// Source returns the Japanese value of a field
func (e *Entry) Source(f Field) (string, bool) {
	switch f {
	case FieldName:
		return e.fields.getString(KeySourceName)
	case FieldBody:
		return e.fields.getString(KeySourceText)
	case FieldChoice0, FieldChoice1:
		if c := e.choice(f); c != nil {
			return c.SourceText()
		}
	}
	return "", false
}

// Target returns the English value of a field
func (e *Entry) Target(f Field) (string, bool) {
	switch f {
	case FieldName:
		return e.fields.getString(KeyTargetName)
	case FieldBody:
		return e.fields.getString(KeyTargetText)
	case FieldChoice0, FieldChoice1:
		if c := e.choice(f); c != nil {
			return c.TargetText()
		}
	}
	return "", false
}

// SetTarget stores the English value of a field. It returns false when
// the field does not exist in this entry.
func (e *Entry) SetTarget(f Field, value string) bool {
	switch f {
	case FieldName:
		e.fields.setString(KeyTargetName, value)
	case FieldBody:
		e.fields.setString(KeyTargetText, value)
	case FieldChoice0, FieldChoice1:
		c := e.choice(f)
		if c == nil {
			return false
		}
		c.SetTargetText(value)
	default:
		return false
	}
	return true
}

func (e *Entry) choice(f Field) *Choice {
	idx := int(f - FieldChoice0)
	if idx < 0 || idx >= len(e.choices) {
		return nil
	}
	return e.choices[idx]
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	if err := e.fields.UnmarshalJSON(data); err != nil {
		return err
	}

	e.choices = nil
	e.hasChoices = false
	raw, ok := e.fields.get(KeyChoices)
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, &e.choices); err != nil {
		return fmt.Errorf("choices: %w", err)
	}
	e.hasChoices = true
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	fields := e.fields.clone()
	if e.hasChoices {
		raw, err := marshalNoEscape(e.choices)
		if err != nil {
			return nil, err
		}
		fields.set(KeyChoices, raw)
	}
	return fields.MarshalJSON()
}

// File is one dialogue document: the ordered entries of its "text" array
// plus every other top-level member, kept as read
type File struct {
	fields  object
	entries []*Entry
	hasText bool
}

// NewFile builds a document holding the given entries
func NewFile(entries ...*Entry) *File {
	return &File{entries: entries, hasText: true}
}

// Entries returns the entries in index order
func (f *File) Entries() []*Entry {
	return f.entries
}

// Len returns the number of entries
func (f *File) Len() int {
	return len(f.entries)
}

// Entry returns the entry at index i, or false past the end of the list
func (f *File) Entry(i int) (*Entry, bool) {
	if i < 0 || i >= len(f.entries) {
		return nil, false
	}
	return f.entries[i], true
}

// TargetTitle returns the optional English title
func (f *File) TargetTitle() (string, bool) {
	return f.fields.getString(KeyTargetTitle)
}

// SetTargetTitle stores the English title
func (f *File) SetTargetTitle(s string) {
	f.fields.setString(KeyTargetTitle, s)
}

func (f *File) UnmarshalJSON(data []byte) error {
	if err := f.fields.UnmarshalJSON(data); err != nil {
		return err
	}

	f.entries = nil
	f.hasText = false
	raw, ok := f.fields.get(KeyText)
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, &f.entries); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	f.hasText = true
	return nil
}

func (f File) MarshalJSON() ([]byte, error) {
	fields := f.fields.clone()
	if f.hasText {
		raw, err := marshalNoEscape(f.entries)
		if err != nil {
			return nil, err
		}
		fields.set(KeyText, raw)
	}
	return fields.MarshalJSON()
}

// Parse decodes a dialogue document
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Marshal encodes a dialogue document the way it is stored on disk:
// four-space indentation, non-ASCII and HTML characters written literally
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
