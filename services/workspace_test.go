package services

import (
	"context"
	"testing"
	"time"

	"tim_report_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return NewWorkspace(WorkspaceOptions{
		Renderer:  NewRenderer("/static/logo.png"),
		Paginator: NewPaginator(NewHeuristicMeasurer(), nil),
	})
}

func TestWorkspaceStartsWithDefaults(t *testing.T) {
	w := newTestWorkspace(t)

	form := w.Form()
	assert.Len(t, form.Rows, 5)
	assert.Len(t, form.Sections[models.SectionRealised], 1)
	assert.Equal(t, uint64(0), w.Revision())

	doc := w.Document()
	assert.Equal(t, []models.Section{{Topic: "Intervention", Items: []string{}}}, doc.RealisedSections)
	// Default rows only carry a label
	assert.Len(t, doc.Measurements, 5)
}

func TestWorkspaceEditsBumpRevision(t *testing.T) {
	w := newTestWorkspace(t)

	require.NoError(t, w.SetField(FieldMotif, "Fuite"))
	assert.Equal(t, uint64(1), w.Revision())

	assert.ErrorIs(t, w.SetField("nope", "x"), ErrUnknownField)
	assert.Equal(t, uint64(1), w.Revision(), "failed edits change nothing")

	i, err := w.AddSection(models.SectionProblems, SectionInput{Topic: "Accès"})
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	require.NoError(t, w.UpdateSection(models.SectionProblems, 0, SectionInput{Topic: "Accès", Items: "Clé absente"}))
	assert.Equal(t, 5, w.AddRow(MeasurementInput{Field: "Pression"}))
	require.NoError(t, w.UpdateRow(5, MeasurementInput{Field: "Pression", Value: "6"}))
	require.NoError(t, w.RemoveRow(0))
	assert.ErrorIs(t, w.RemoveSection(models.SectionProblems, 3), ErrSectionNotFound)

	doc := w.Document()
	assert.Equal(t, "Fuite", doc.Motif)
	assert.Equal(t, []models.Section{{Topic: "Accès", Items: []string{"Clé absente"}}}, doc.ProblemSections)
	assert.Equal(t, models.Measurement{Field: "Pression", Value: "6"}, doc.Measurements[len(doc.Measurements)-1])
	assert.Equal(t, uint64(6), w.Revision())
}

func TestWorkspaceReplaceRows(t *testing.T) {
	w := newTestWorkspace(t)
	w.ReplaceRows([]MeasurementInput{{Field: "Débit", Value: "3 m3/h"}})

	assert.Equal(t, []models.Measurement{{Field: "Débit", Value: "3 m3/h"}}, w.Document().Measurements)
}

func TestWorkspaceImages(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	ids := w.SubmitImages(ctx, []ImageFile{
		{Name: "a.png", Data: pngBytes(t, 1)},
		{Name: "b.png", Data: pngBytes(t, 2)},
	})
	require.Len(t, ids, 2)
	w.WaitImages()

	require.NoError(t, w.SetImageCaption(ids[1], "Compteur"))
	require.NoError(t, w.DeleteImage(ids[0]))
	assert.ErrorIs(t, w.DeleteImage(ids[0]), ErrImageNotFound)

	doc := w.Document()
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "Compteur", doc.Images[0].Caption)
}

func TestWorkspaceExportImport(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.SetField(FieldDate, "2024-03-14"))
	require.NoError(t, w.SetField(FieldReference, "INT-7"))

	name, data, err := w.Export()
	require.NoError(t, err)
	assert.Equal(t, "intervention-2024-03-14.json", name)

	other := newTestWorkspace(t)
	require.NoError(t, other.Import(data))
	assert.Equal(t, w.Document(), other.Document())

	before := other.Revision()
	assert.ErrorIs(t, other.Import([]byte("garbage")), ErrInvalidImport)
	assert.Equal(t, before, other.Revision())
	assert.Equal(t, "INT-7", other.Document().Reference)
}

func TestWorkspaceReset(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.SetField(FieldMotif, "Fuite"))
	w.SubmitImages(context.Background(), []ImageFile{{Name: "a.png", Data: pngBytes(t, 3)}})
	w.WaitImages()

	w.Reset()

	doc := w.Document()
	assert.Empty(t, doc.Motif)
	assert.Empty(t, doc.Images)
	assert.Len(t, w.Form().Rows, 5)

	// Uploads keep working on the same list after a reset
	w.SubmitImages(context.Background(), []ImageFile{{Name: "a.png", Data: pngBytes(t, 3)}})
	w.WaitImages()
	assert.Len(t, w.Document().Images, 1)
}

func TestWorkspacePreview(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.SetField(FieldMotif, "Fuite hydraulique"))
	ctx := context.Background()

	snap, err := w.Preview(ctx, 445)
	require.NoError(t, err)
	assert.Equal(t, w.Revision(), snap.Revision)
	assert.Equal(t, "Fuite hydraulique", snap.Document.Motif)
	require.Len(t, snap.Pages, 1)
	require.Len(t, snap.Scales, 1)
	assert.InDelta(t, 0.5, snap.Scales[0].Scale, 1e-9)

	// Same revision, same pages
	again, err := w.Preview(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, snap.Revision, again.Revision)
	assert.Equal(t, 445.0, again.Width)

	w.Resize(2000)
	wide, err := w.Preview(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wide.Scales[0].Scale)
	assert.Equal(t, 445.0, snap.Width, "earlier snapshots are not mutated")
}

func TestWorkspacePreviewFollowsEdits(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	first, err := w.Preview(ctx, 800)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := w.AddSection(models.SectionProblems, SectionInput{Topic: "Point", Items: "a\nb\nc\nd\ne"})
		require.NoError(t, err)
	}
	second, err := w.Preview(ctx, 0)
	require.NoError(t, err)

	assert.Greater(t, second.Revision, first.Revision)
	assert.Greater(t, len(second.Pages), len(first.Pages))
}

func TestWorkspacePreviewPreference(t *testing.T) {
	w := newTestWorkspace(t)
	w.transitionDelay = time.Millisecond
	ctx := context.Background()

	hidden, err := w.PreviewHidden(ctx)
	require.NoError(t, err)
	assert.False(t, hidden)

	hidden, err = w.TogglePreview(ctx)
	require.NoError(t, err)
	assert.True(t, hidden)

	require.NoError(t, w.SetPreviewHidden(ctx, false))
	hidden, err = w.PreviewHidden(ctx)
	require.NoError(t, err)
	assert.False(t, hidden)
}

func TestWorkspacePreviewCarriesHiddenFlag(t *testing.T) {
	w := newTestWorkspace(t)
	w.transitionDelay = time.Millisecond
	ctx := context.Background()

	shown, err := w.Preview(ctx, 445)
	require.NoError(t, err)
	assert.False(t, shown.Hidden)

	require.NoError(t, w.SetPreviewHidden(ctx, true))
	hidden, err := w.Preview(ctx, 0)
	require.NoError(t, err)
	assert.True(t, hidden.Hidden)
	assert.Equal(t, shown.Revision, hidden.Revision)
	assert.False(t, shown.Hidden, "earlier snapshots are not mutated")
}

func TestWorkspaceImportDropsPendingUploads(t *testing.T) {
	source := newTestWorkspace(t)
	require.NoError(t, source.SetField(FieldReference, "INT-9"))
	_, data, err := source.Export()
	require.NoError(t, err)

	w := newTestWorkspace(t)
	w.SubmitImages(context.Background(), []ImageFile{{Name: "late.png", Data: pngBytes(t, 90)}})
	require.NoError(t, w.Import(data))
	w.WaitImages()

	doc := w.Document()
	assert.Equal(t, "INT-9", doc.Reference)
	assert.Empty(t, doc.Images, "a decode finishing after the import is discarded")
	assert.Empty(t, w.Form().Images, "no placeholder left behind")
}

func TestWorkspaceResetDropsPendingUploads(t *testing.T) {
	w := newTestWorkspace(t)
	require.NoError(t, w.SetField(FieldMotif, "Fuite"))
	w.SubmitImages(context.Background(), []ImageFile{
		{Name: "a.png", Data: pngBytes(t, 91)},
		{Name: "b.png", Data: pngBytes(t, 92)},
	})
	w.Reset()
	w.WaitImages()

	assert.Empty(t, w.Document().Images, "a decode finishing after the reset is discarded")
	assert.Empty(t, w.Form().Images)
	assert.Empty(t, w.Document().Motif)
}
