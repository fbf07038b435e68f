package services

import (
	"errors"
	"strings"

	"tim_report_app_go/models"
)

var (
	ErrUnknownField    = errors.New("unknown form field")
	ErrUnknownSection  = errors.New("unknown section kind")
	ErrSectionNotFound = errors.New("section not found")
	ErrRowNotFound     = errors.New("measurement row not found")
)

// Scalar form field ids. They double as keys of the interchange file.
const (
	FieldEmitterName         = "em_nom"
	FieldEmitterAddress      = "em_adresse"
	FieldEmitterContact      = "em_contact"
	FieldEmitterContactName  = "em_contact_nom"
	FieldEmitterContactPhone = "em_contact_tel"
	FieldEmitterContactMail  = "em_contact_mail"
	FieldClientName          = "cl_nom"
	FieldClientAddress       = "cl_adresse"
	FieldClientContact       = "cl_contact"
	FieldClientContactName   = "cl_contact_nom"
	FieldClientContactPhone  = "cl_contact_tel"
	FieldClientContactMail   = "cl_contact_mail"
	FieldClientNumber        = "cl_num"
	FieldDate                = "date"
	FieldStartDate           = "date_debut"
	FieldEndDate             = "date_fin"
	FieldReference           = "reference"
	FieldMotif               = "motif"
	FieldTodo                = "travaux_a_faire" // Newline-delimited textarea
)

// ScalarFields lists every scalar field in form order
var ScalarFields = []string{
	FieldEmitterName, FieldEmitterAddress, FieldEmitterContact,
	FieldEmitterContactName, FieldEmitterContactPhone, FieldEmitterContactMail,
	FieldClientName, FieldClientAddress, FieldClientContact,
	FieldClientContactName, FieldClientContactPhone, FieldClientContactMail,
	FieldClientNumber, FieldDate, FieldStartDate, FieldEndDate,
	FieldReference, FieldMotif, FieldTodo,
}

// SectionKinds lists the dynamic section groups in render order
var SectionKinds = []string{models.SectionRealised, models.SectionProblems}

// SectionInput is one editable section block: a topic input and an items textarea
type SectionInput struct {
	Topic string `json:"topic"`
	Items string `json:"items"`
}

// MeasurementInput is one editable row of the measurement table
type MeasurementInput struct {
	Field  string `json:"k"`
	Value  string `json:"v"`
	Remark string `json:"r"`
}

// FormState is the raw, untrimmed state of the report form
type FormState struct {
	Fields   map[string]string
	Sections map[string][]SectionInput
	Rows     []MeasurementInput
	Images   *ImageList
}

// defaultRows are the measurement rows a fresh report starts with
var defaultRows = []string{
	"Date de l’intervention",
	"Heure d’arrivée",
	"Durée de l’intervention",
	"Heure de départ",
	"Déplacement (km)",
}

// NewFormState returns an empty form
func NewFormState() *FormState {
	return &FormState{
		Fields:   make(map[string]string),
		Sections: make(map[string][]SectionInput),
		Images:   NewImageList(),
	}
}

// NewDefaultFormState returns the form a new report starts from
func NewDefaultFormState() *FormState {
	s := NewFormState()
	for _, label := range defaultRows {
		s.Rows = append(s.Rows, MeasurementInput{Field: label})
	}
	s.Sections[models.SectionRealised] = []SectionInput{{Topic: "Intervention"}}
	return s
}

// IsScalarField reports whether key names a scalar form field
func IsScalarField(key string) bool {
	for _, f := range ScalarFields {
		if f == key {
			return true
		}
	}
	return false
}

// IsSectionKind reports whether kind names a dynamic section group
func IsSectionKind(kind string) bool {
	return kind == models.SectionRealised || kind == models.SectionProblems
}

// SetField sets the raw value of a scalar field
func (s *FormState) SetField(key, value string) error {
	if !IsScalarField(key) {
		return ErrUnknownField
	}
	s.Fields[key] = value
	return nil
}

// AddSection appends a section block and returns its index
func (s *FormState) AddSection(kind string, in SectionInput) (int, error) {
	if !IsSectionKind(kind) {
		return 0, ErrUnknownSection
	}
	s.Sections[kind] = append(s.Sections[kind], in)
	return len(s.Sections[kind]) - 1, nil
}

// UpdateSection replaces the section block at index
func (s *FormState) UpdateSection(kind string, index int, in SectionInput) error {
	if !IsSectionKind(kind) {
		return ErrUnknownSection
	}
	if index < 0 || index >= len(s.Sections[kind]) {
		return ErrSectionNotFound
	}
	s.Sections[kind][index] = in
	return nil
}

// RemoveSection deletes the section block at index
func (s *FormState) RemoveSection(kind string, index int) error {
	if !IsSectionKind(kind) {
		return ErrUnknownSection
	}
	list := s.Sections[kind]
	if index < 0 || index >= len(list) {
		return ErrSectionNotFound
	}
	s.Sections[kind] = append(list[:index:index], list[index+1:]...)
	return nil
}

// AddRow appends a measurement row and returns its index
func (s *FormState) AddRow(in MeasurementInput) int {
	s.Rows = append(s.Rows, in)
	return len(s.Rows) - 1
}

// UpdateRow replaces the measurement row at index
func (s *FormState) UpdateRow(index int, in MeasurementInput) error {
	if index < 0 || index >= len(s.Rows) {
		return ErrRowNotFound
	}
	s.Rows[index] = in
	return nil
}

// RemoveRow deletes the measurement row at index
func (s *FormState) RemoveRow(index int) error {
	if index < 0 || index >= len(s.Rows) {
		return ErrRowNotFound
	}
	s.Rows = append(s.Rows[:index:index], s.Rows[index+1:]...)
	return nil
}

// CleanLines splits a textarea value into trimmed, non-empty lines
func CleanLines(text string) []string {
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// CollectDocument flattens the form into a normalized Document. It only reads
// the form, and the same form always yields the same Document.
func CollectDocument(s *FormState) models.Document {
	get := func(key string) string {
		return strings.TrimSpace(s.Fields[key])
	}

	doc := models.Document{
		EmitterName:         get(FieldEmitterName),
		EmitterAddress:      get(FieldEmitterAddress),
		EmitterContact:      get(FieldEmitterContact),
		EmitterContactName:  get(FieldEmitterContactName),
		EmitterContactPhone: get(FieldEmitterContactPhone),
		EmitterContactMail:  get(FieldEmitterContactMail),
		ClientName:          get(FieldClientName),
		ClientAddress:       get(FieldClientAddress),
		ClientContact:       get(FieldClientContact),
		ClientContactName:   get(FieldClientContactName),
		ClientContactPhone:  get(FieldClientContactPhone),
		ClientContactMail:   get(FieldClientContactMail),
		ClientNumber:        get(FieldClientNumber),
		Date:                get(FieldDate),
		StartDate:           get(FieldStartDate),
		EndDate:             get(FieldEndDate),
		Reference:           get(FieldReference),
		Motif:               get(FieldMotif),
		RealisedSections:    collectSections(s.Sections[models.SectionRealised]),
		ProblemSections:     collectSections(s.Sections[models.SectionProblems]),
		Todo:                CleanLines(s.Fields[FieldTodo]),
		Measurements:        collectRows(s.Rows),
		Images:              []models.Image{},
	}

	if s.Images != nil {
		images := s.Images.Ready()
		for i := range images {
			images[i].Src = strings.TrimSpace(images[i].Src)
			images[i].Caption = strings.TrimSpace(images[i].Caption)
		}
		doc.Images = DedupImages(images)
	}
	return doc
}

func collectSections(inputs []SectionInput) []models.Section {
	sections := []models.Section{}
	for _, in := range inputs {
		sec := models.Section{
			Topic: strings.TrimSpace(in.Topic),
			Items: CleanLines(in.Items),
		}
		if sec.IsEmpty() {
			continue
		}
		sections = append(sections, sec)
	}
	return sections
}

func collectRows(inputs []MeasurementInput) []models.Measurement {
	rows := []models.Measurement{}
	for _, in := range inputs {
		row := models.Measurement{
			Field:  strings.TrimSpace(in.Field),
			Value:  strings.TrimSpace(in.Value),
			Remark: strings.TrimSpace(in.Remark),
		}
		if row.IsBlank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// DedupImages drops images whose source already appeared earlier in the list.
// The first occurrence wins, including its caption.
func DedupImages(images []models.Image) []models.Image {
	seen := make(map[string]struct{}, len(images))
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		if _, dup := seen[img.Src]; dup {
			continue
		}
		seen[img.Src] = struct{}{}
		out = append(out, img)
	}
	return out
}
