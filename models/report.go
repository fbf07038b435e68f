package models

// Section kinds rendered by the composer
const (
	SectionRealised = "realises"
	SectionProblems = "problemes"
)

// Document is the normalized intervention report. It is what the export file
// contains and what the preview is rendered from.
type Document struct {
	EmitterName         string `json:"em_nom"`
	EmitterAddress      string `json:"em_adresse"`
	EmitterContact      string `json:"em_contact"` // Legacy free-text contact
	EmitterContactName  string `json:"em_contact_nom"`
	EmitterContactPhone string `json:"em_contact_tel"`
	EmitterContactMail  string `json:"em_contact_mail"`

	ClientName         string `json:"cl_nom"`
	ClientAddress      string `json:"cl_adresse"`
	ClientContact      string `json:"cl_contact"` // Legacy free-text contact
	ClientContactName  string `json:"cl_contact_nom"`
	ClientContactPhone string `json:"cl_contact_tel"`
	ClientContactMail  string `json:"cl_contact_mail"`
	ClientNumber       string `json:"cl_num"`

	Date      string `json:"date"`
	StartDate string `json:"date_debut"`
	EndDate   string `json:"date_fin"`
	Reference string `json:"reference"`
	Motif     string `json:"motif"`

	RealisedSections []Section     `json:"realises_sections"`
	ProblemSections  []Section     `json:"problemes_sections"`
	Todo             []string      `json:"travaux_a_faire"`
	Measurements     []Measurement `json:"kv"`
	Images           []Image       `json:"images"`
}

// Section is a titled list of items inside realised work or problems
type Section struct {
	Topic string   `json:"topic"`
	Items []string `json:"items"`
}

// Measurement is one row of the on-site measurement table
type Measurement struct {
	Field  string `json:"k"`
	Value  string `json:"v"`
	Remark string `json:"r"`
}

// Image is an embedded picture; Src holds the data URI
type Image struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

// IsEmpty reports whether the section carries neither topic nor items
func (s Section) IsEmpty() bool {
	return s.Topic == "" && len(s.Items) == 0
}

// IsBlank reports whether all three cells of the row are empty
func (m Measurement) IsBlank() bool {
	return m.Field == "" && m.Value == "" && m.Remark == ""
}

// Sections returns the sections of the given kind
func (d *Document) Sections(kind string) []Section {
	switch kind {
	case SectionRealised:
		return d.RealisedSections
	case SectionProblems:
		return d.ProblemSections
	default:
		return nil
	}
}
