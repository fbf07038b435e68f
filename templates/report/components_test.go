package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"1 rue <A>", "", "13000 Marseille"}, SplitLines("1 rue <A>\r\n\n13000 Marseille"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestContacts(t *testing.T) {
	html := renderString(t, Contacts(
		PartyView{Title: "TIM", Address: "1 rue\nMarseille", Contact: []string{"Jean", "0600"}},
		PartyView{Title: "Client", Details: []string{"Numéro Client : 12"}},
	))

	assert.Equal(t, 2, strings.Count(html, `class="out-box"`))
	assert.Contains(t, html, "1 rue<br>Marseille")
	assert.Contains(t, html, "Jean<br>0600")
	assert.Contains(t, html, "Numéro Client : 12")
}

func TestSectionBoxSkipsEmptyLists(t *testing.T) {
	html := renderString(t, SectionBox("Travaux", []SectionView{{Topic: "Moteur :"}, {Items: []string{"a", "b"}}}))
	assert.Equal(t, 1, strings.Count(html, "<ol"))
	assert.Equal(t, 1, strings.Count(html, `class="out-topic"`))
}

func TestSheetAndFrames(t *testing.T) {
	sheet := SheetView{
		Number: 2,
		Style:  "transform: scale(0.5)",
		Blocks: []Frame{{Class: "out-motif", Kind: "motif", Body: Motif("Fuite")}},
	}
	html := renderString(t, Sheet(sheet, Footer("/static/logo.png")))

	assert.Contains(t, html, `data-page="2"`)
	assert.Contains(t, html, `style="transform: scale(0.5);"`)
	assert.Contains(t, html, `data-kind="motif" data-block="0"`)
	assert.Contains(t, html, "MOTIF D'INTERVENTION")
	assert.Contains(t, html, `class="sheet-footer"`)
}

func TestPrintAreaUsesNativeSize(t *testing.T) {
	sheets := []SheetView{{Number: 1, Style: "transform: scale(0.5)"}, {Number: 2}}
	html := renderString(t, PrintArea(sheets, nil))

	assert.NotContains(t, html, "transform")
	assert.Equal(t, 2, strings.Count(html, `style="min-height: 297mm;"`))
}

func TestImageRow(t *testing.T) {
	html := renderString(t, ImageRow([]ImageView{{Src: "data:image/png;base64,AA==", Caption: "Vanne & joint"}}))
	assert.Contains(t, html, `src="data:image/png;base64,AA=="`)
	assert.Contains(t, html, "Vanne &amp; joint")
}

func TestPartyBoxEscapesAddress(t *testing.T) {
	html := renderString(t, Contacts(PartyView{Title: "TIM", Address: "1 rue <A>\r\nMarseille"}, PartyView{}))
	assert.Contains(t, html, "1 rue &lt;A&gt;<br>Marseille")
}

func TestSectionURL(t *testing.T) {
	assert.Equal(t, "/api/report/sections/work", sectionURL("work", -1))
	assert.Equal(t, "/api/report/sections/work/2", sectionURL("work", 2))
}

func TestComposerPageLoadsStaticAssets(t *testing.T) {
	html := renderString(t, ComposerPage(ComposerView{
		Fields:       []FieldView{{Key: "ref", Label: "Référence", Value: "R-1"}},
		SectionOrder: []string{"work"},
		Sections:     map[string][]SectionInputView{"work": {{Kind: "work", Index: 0, Topic: "Moteur"}}},
		Images:       []ImageInputView{{ID: "img1", Caption: "Vanne", Pending: true}},
		PDFEnabled:   true,
		Nonce:        "n0nce",
	}))

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, `<link rel="stylesheet" href="/static/css/composer.css">`)
	assert.Contains(t, html, `<script src="/static/js/composer.js" nonce="n0nce"></script>`)
	assert.NotContains(t, html, "addEventListener", "no inline script is rendered")
	assert.Contains(t, html, `data-field="ref" value="R-1"`)
	assert.Contains(t, html, `data-target="/api/report/sections/work/0"`)
	assert.Contains(t, html, `data-target="/api/report/sections/work"`)
	assert.Contains(t, html, `data-pending="true"`)
	assert.Contains(t, html, `action="/api/report/pdf"`)
}
