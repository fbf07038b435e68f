package services

import (
	"encoding/json"
	"testing"

	"tim_report_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() models.Document {
	return models.Document{
		EmitterName:        "Transitube",
		EmitterAddress:     "1 rue du Port\n13000 Marseille",
		EmitterContactName: "Jean Martin",
		ClientName:         "Hôpital Nord",
		ClientContactMail:  "technique@example.com",
		Date:               "2024-03-14",
		Reference:          "INT-042",
		Motif:              "Fuite hydraulique",
		RealisedSections: []models.Section{
			{Topic: "Moteur", Items: []string{"Remplacement joint", "Purge circuit"}},
		},
		ProblemSections: []models.Section{},
		Todo:            []string{"Changer la vanne"},
		Measurements: []models.Measurement{
			{Field: "Pression", Value: "6 bar", Remark: "stable"},
		},
		Images: []models.Image{{Src: "data:image/png;base64,iVBORw0KGgo=", Caption: "Vanne"}},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := ExportDocument(doc)
	require.NoError(t, err)

	payload, err := ParseImport(data)
	require.NoError(t, err)

	form := NewDefaultFormState()
	payload.Apply(form)

	assert.Equal(t, doc, CollectDocument(form))
}

func TestExportIncludesEveryKey(t *testing.T) {
	data, err := ExportDocument(models.Document{})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range ScalarFields {
		assert.Contains(t, raw, key)
	}
	for _, key := range []string{"realises_sections", "problemes_sections", "kv", "images"} {
		assert.Equal(t, []any{}, raw[key], key)
	}
	assert.Equal(t, []any{}, raw[FieldTodo])
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "intervention-2024-03-14.json", ExportFilename(models.Document{Date: "2024-03-14"}))
	assert.Equal(t, "intervention-draft.json", ExportFilename(models.Document{}))
	assert.Equal(t, "intervention-14-03-2024.json", ExportFilename(models.Document{Date: "14/03/2024"}))
}

func TestParseImportRejectsInvalidFiles(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"motif": `,
		"array":         `[1, 2]`,
		"null":          `null`,
		"bad sections":  `{"realises_sections": "oops"}`,
		"object scalar": `{"motif": {"a": 1}}`,
		"bad images":    `{"images": [1]}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseImport([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}

func TestImportFailureLeavesFormUntouched(t *testing.T) {
	form := NewDefaultFormState()
	form.Fields[FieldMotif] = "Panne"
	before := CollectDocument(form)

	payload, err := ParseImport([]byte(`{"motif": "x", "kv": {}}`))
	require.Error(t, err)
	assert.Nil(t, payload)

	assert.Equal(t, before, CollectDocument(form))
}

func TestImportMergesScalars(t *testing.T) {
	form := NewFormState()
	form.Fields[FieldClientName] = "Ancien client"
	form.Fields[FieldMotif] = "Ancien motif"
	form.Rows = []MeasurementInput{{Field: "old"}}
	form.Images.Add("data:image/png;base64,OLD", "")

	payload, err := ParseImport([]byte(`{"motif": "Nouveau", "reference": 42, "travaux_a_faire": ["a", "b"]}`))
	require.NoError(t, err)
	payload.Apply(form)

	// Present keys overwrite, missing ones keep their value
	assert.Equal(t, "Nouveau", form.Fields[FieldMotif])
	assert.Equal(t, "Ancien client", form.Fields[FieldClientName])
	assert.Equal(t, "42", form.Fields[FieldReference])
	assert.Equal(t, "a\nb", form.Fields[FieldTodo])

	// Collections are always replaced
	assert.Empty(t, form.Rows)
	assert.Equal(t, 0, form.Images.Len())
	assert.Empty(t, form.Sections[models.SectionRealised])
}

func TestImportSkipsImagesWithoutSource(t *testing.T) {
	payload, err := ParseImport([]byte(`{"images": [{"src": " ", "caption": "x"}, {"src": "data:image/png;base64,A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []models.Image{{Src: "data:image/png;base64,A"}}, payload.Images)
}

func TestImportNullFields(t *testing.T) {
	payload, err := ParseImport([]byte(`{"motif": null, "kv": null}`))
	require.NoError(t, err)
	assert.Equal(t, "", payload.Scalars[FieldMotif])
	assert.Empty(t, payload.Measurements)
}
