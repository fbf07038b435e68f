package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"tim_report_app_go/models"
	"tim_report_app_go/templates/report"

	"github.com/a-h/templ"
)

// BlockKind identifies what a block renders
type BlockKind string

const (
	BlockHeader       BlockKind = "header"
	BlockContacts     BlockKind = "contacts"
	BlockMotif        BlockKind = "motif"
	BlockRealised     BlockKind = "realised"
	BlockProblems     BlockKind = "problems"
	BlockTodo         BlockKind = "todo"
	BlockMeasurements BlockKind = "measurements"
	BlockImagesTitle  BlockKind = "images-title"
	BlockImageRow     BlockKind = "image-row"
)

// Section headings as printed on the report
const (
	TitleRealised     = "Travaux réalisés"
	TitleProblems     = "Problèmes rencontrés"
	TitleTodo         = "Travaux à réaliser"
	TitleMeasurements = "Intervention chez le Client — Remarques"
	TitleImages       = "Illustrations"
)

// Approximate characters per printed line, used for shape hints
const (
	charsPerFullLine = 110
	charsPerHalfLine = 50
	charsPerCell     = 32
)

// BlockShape summarizes a block's content for measurers that cannot lay it out
type BlockShape struct {
	Lines  int // Text lines, wrapping included
	Rows   int // Table rows, header included
	Images int // Figures in an image row
}

// Block is an atomic unit of the report: it is never split across pages
type Block struct {
	Kind  BlockKind
	Class string
	Style string
	Shape BlockShape
	Body  templ.Component
}

// Frame returns the block as the templates render it
func (b Block) Frame() report.Frame {
	return report.Frame{Class: b.Class, Style: b.Style, Kind: string(b.Kind), Body: b.Body}
}

// Render writes the block with its wrapper element
func (b Block) Render(ctx context.Context, w io.Writer) error {
	return report.FrameComponent(b.Frame(), 0).Render(ctx, w)
}

// HTML renders the block to a string
func (b Block) HTML(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := b.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Renderer turns documents into blocks
type Renderer struct {
	LogoURL string
}

// NewRenderer creates a renderer using logoURL for the header block
func NewRenderer(logoURL string) *Renderer {
	return &Renderer{LogoURL: logoURL}
}

// RenderBlocks produces the ordered blocks of a document. Empty parts of the
// document produce no block.
func (r *Renderer) RenderBlocks(doc models.Document) []Block {
	blocks := []Block{
		{
			Kind:  BlockHeader,
			Class: "out-head-logo",
			Body:  report.Logo(r.LogoURL),
		},
		r.contactsBlock(doc),
	}

	if doc.Motif != "" {
		blocks = append(blocks, Block{
			Kind:  BlockMotif,
			Class: "out-motif",
			Shape: BlockShape{Lines: 1 + wrappedLines(doc.Motif, charsPerFullLine)},
			Body:  report.Motif(doc.Motif),
		})
	}

	if len(doc.RealisedSections) > 0 {
		blocks = append(blocks, sectionBlock(BlockRealised, TitleRealised, doc.RealisedSections))
	}
	if len(doc.ProblemSections) > 0 {
		blocks = append(blocks, sectionBlock(BlockProblems, TitleProblems, doc.ProblemSections))
	}

	if len(doc.Todo) > 0 {
		lines := 1
		for _, it := range doc.Todo {
			lines += wrappedLines(it, charsPerFullLine)
		}
		blocks = append(blocks, Block{
			Kind:  BlockTodo,
			Class: "out-section out-section--underline",
			Shape: BlockShape{Lines: lines},
			Body:  report.ListBox(TitleTodo, doc.Todo),
		})
	}

	if len(doc.Measurements) > 0 {
		rows := make([]report.MeasurementView, 0, len(doc.Measurements))
		tableRows := 1
		for _, m := range doc.Measurements {
			rows = append(rows, report.MeasurementView{Field: m.Field, Value: m.Value, Remark: m.Remark})
			tableRows += max(wrappedLines(m.Field, charsPerCell), wrappedLines(m.Value, charsPerCell), wrappedLines(m.Remark, charsPerCell))
		}
		blocks = append(blocks, Block{
			Kind:  BlockMeasurements,
			Class: "out-section out-section--underline",
			Shape: BlockShape{Lines: 1, Rows: tableRows},
			Body:  report.MeasurementTable(TitleMeasurements, rows),
		})
	}

	if len(doc.Images) > 0 {
		blocks = append(blocks, Block{
			Kind:  BlockImagesTitle,
			Class: "out-section out-section--underline",
			Shape: BlockShape{Lines: 1},
			Body:  report.Title(TitleImages),
		})
		for start := 0; start < len(doc.Images); start += 2 {
			end := start + 2
			if end > len(doc.Images) {
				end = len(doc.Images)
			}
			blocks = append(blocks, imageRowBlock(doc.Images[start:end]))
		}
	}

	return blocks
}

func (r *Renderer) contactsBlock(doc models.Document) Block {
	emitter := report.PartyView{
		Title:   orDefault(doc.EmitterName, "Émetteur"),
		Address: doc.EmitterAddress,
		Contact: ContactLines(doc.EmitterContactName, doc.EmitterContactPhone, doc.EmitterContactMail, doc.EmitterContact),
	}
	if doc.StartDate != "" || doc.EndDate != "" {
		emitter.Details = append(emitter.Details,
			"Intervention du "+orDefault(doc.StartDate, "?")+" au "+orDefault(doc.EndDate, "?"))
	}

	client := report.PartyView{
		Title:   orDefault(doc.ClientName, "Client"),
		Address: doc.ClientAddress,
		Contact: ContactLines(doc.ClientContactName, doc.ClientContactPhone, doc.ClientContactMail, doc.ClientContact),
	}
	if doc.ClientNumber != "" {
		client.Details = append(client.Details, "Numéro Client : "+doc.ClientNumber)
	}
	if doc.Date != "" || doc.Reference != "" {
		line := "Rapport du : " + doc.Date
		if doc.Reference != "" {
			line += " — Réf. : " + doc.Reference
		}
		client.Details = append(client.Details, line)
	}

	return Block{
		Kind:  BlockContacts,
		Class: "out-head-contacts",
		Shape: BlockShape{Lines: max(partyLines(emitter), partyLines(client))},
		Body:  report.Contacts(emitter, client),
	}
}

// ContactLines picks the most specific contact available: the structured
// name, phone and email when any is set, the legacy free-text field otherwise.
func ContactLines(name, phone, mail, legacy string) []string {
	var parts []string
	for _, p := range []string{name, phone, mail} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return parts
	}
	if legacy != "" {
		return []string{legacy}
	}
	return nil
}

func partyLines(p report.PartyView) int {
	lines := 1
	if p.Address != "" {
		for _, l := range strings.Split(p.Address, "\n") {
			lines += wrappedLines(l, charsPerHalfLine)
		}
	}
	for _, c := range p.Contact {
		lines += wrappedLines(c, charsPerHalfLine)
	}
	for _, d := range p.Details {
		lines += wrappedLines(d, charsPerHalfLine)
	}
	return lines
}

func sectionBlock(kind BlockKind, title string, sections []models.Section) Block {
	views := make([]report.SectionView, 0, len(sections))
	lines := 1
	for _, s := range sections {
		v := report.SectionView{Items: s.Items}
		if s.Topic != "" {
			v.Topic = NormalizeTopic(s.Topic)
			lines += wrappedLines(v.Topic, charsPerFullLine)
		}
		for _, it := range s.Items {
			lines += wrappedLines(it, charsPerFullLine)
		}
		views = append(views, v)
	}
	return Block{
		Kind:  kind,
		Class: "out-section out-section--underline",
		Shape: BlockShape{Lines: lines},
		Body:  report.SectionBox(title, views),
	}
}

func imageRowBlock(images []models.Image) Block {
	views := make([]report.ImageView, 0, len(images))
	captionLines := 1
	for _, img := range images {
		views = append(views, report.ImageView{Src: SafeImageSource(img.Src), Caption: img.Caption})
		captionLines = max(captionLines, wrappedLines(img.Caption, charsPerHalfLine))
	}
	return Block{
		Kind:  BlockImageRow,
		Class: "out-section",
		Style: "margin-top:0; margin-bottom: 2mm;",
		Shape: BlockShape{Lines: captionLines, Images: len(images)},
		Body:  report.ImageRow(views),
	}
}

// NormalizeTopic makes a topic end with a colon
func NormalizeTopic(topic string) string {
	if strings.HasSuffix(topic, ":") {
		return topic
	}
	return topic + " :"
}

// SafeImageSource keeps image sources the report can embed: data URIs of
// images, http(s) URLs and site-relative paths. Anything else is blanked.
func SafeImageSource(src string) string {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.HasPrefix(lower, "data:image/"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "/") && !strings.HasPrefix(lower, "//"):
		return src
	default:
		return ""
	}
}

func wrappedLines(text string, perLine int) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 1
	}
	return (n + perLine - 1) / perLine
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
