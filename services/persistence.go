package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tim_report_app_go/models"
)

var ErrInvalidImport = errors.New("invalid report file")

// ExportDocument serializes a document to the interchange format
func ExportDocument(doc models.Document) ([]byte, error) {
	normalized := doc
	if normalized.RealisedSections == nil {
		normalized.RealisedSections = []models.Section{}
	}
	if normalized.ProblemSections == nil {
		normalized.ProblemSections = []models.Section{}
	}
	if normalized.Todo == nil {
		normalized.Todo = []string{}
	}
	if normalized.Measurements == nil {
		normalized.Measurements = []models.Measurement{}
	}
	if normalized.Images == nil {
		normalized.Images = []models.Image{}
	}

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// ExportFilename returns the download name of an exported document
func ExportFilename(doc models.Document) string {
	return "intervention-" + filenameToken(doc.Date, "draft") + ".json"
}

// filenameToken keeps a user value usable inside a file name
func filenameToken(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// ImportPayload is a fully parsed report file, ready to be applied to a form
type ImportPayload struct {
	Scalars      map[string]string // Only the keys present in the file
	Sections     map[string][]models.Section
	Measurements []models.Measurement
	Images       []models.Image
}

type importSection struct {
	Topic string   `json:"topic"`
	Items []string `json:"items"`
}

// ParseImport parses a report file. Nothing is applied here, so a failure
// leaves the caller's form untouched.
func ParseImport(data []byte) (*ImportPayload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrInvalidImport)
	}

	payload := &ImportPayload{
		Scalars:  make(map[string]string),
		Sections: make(map[string][]models.Section),
	}

	for _, key := range ScalarFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		text, err := scalarText(value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrInvalidImport, key, err)
		}
		payload.Scalars[key] = text
	}

	sectionKeys := map[string]string{
		models.SectionRealised: "realises_sections",
		models.SectionProblems: "problemes_sections",
	}
	for _, kind := range SectionKinds {
		var sections []importSection
		if err := decodeOptional(raw, sectionKeys[kind], &sections); err != nil {
			return nil, err
		}
		for _, s := range sections {
			items := s.Items
			if items == nil {
				items = []string{}
			}
			payload.Sections[kind] = append(payload.Sections[kind], models.Section{Topic: s.Topic, Items: items})
		}
	}

	if err := decodeOptional(raw, "kv", &payload.Measurements); err != nil {
		return nil, err
	}

	var images []models.Image
	if err := decodeOptional(raw, "images", &images); err != nil {
		return nil, err
	}
	for _, img := range images {
		if strings.TrimSpace(img.Src) == "" {
			continue
		}
		payload.Images = append(payload.Images, img)
	}

	return payload, nil
}

func decodeOptional(raw map[string]json.RawMessage, key string, dst any) error {
	value, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidImport, key, err)
	}
	return nil
}

// scalarText converts a scalar field value as the form would display it:
// strings as-is, arrays one element per line, other scalars in JSON notation.
func scalarText(value json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return "", err
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []any:
		lines := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
				continue
			}
			lines = append(lines, strings.TrimSpace(string(mustJSON(item))))
		}
		return strings.Join(lines, "\n"), nil
	case map[string]any:
		return "", errors.New("objects are not allowed here")
	default:
		return string(mustJSON(t)), nil
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// Apply restores the payload into the form. Sections, rows and images are
// replaced; scalar fields are only overwritten when present in the file.
func (p *ImportPayload) Apply(s *FormState) {
	s.Sections = make(map[string][]SectionInput)
	for _, kind := range SectionKinds {
		for _, sec := range p.Sections[kind] {
			s.Sections[kind] = append(s.Sections[kind], SectionInput{
				Topic: sec.Topic,
				Items: strings.Join(sec.Items, "\n"),
			})
		}
	}

	s.Rows = nil
	for _, m := range p.Measurements {
		s.Rows = append(s.Rows, MeasurementInput{Field: m.Field, Value: m.Value, Remark: m.Remark})
	}

	if s.Images == nil {
		s.Images = NewImageList()
	}
	s.Images.Clear()
	s.Images.Restore(p.Images)

	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	for key, value := range p.Scalars {
		s.Fields[key] = value
	}
}
