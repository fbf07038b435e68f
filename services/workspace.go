package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tim_report_app_go/models"
)

// PreviewTransitionDelay lets the show/hide animation of the preview column
// finish before sheets are rescaled to the new width
const PreviewTransitionDelay = 350 * time.Millisecond

// renderTimeout bounds a background render pass
const renderTimeout = 30 * time.Second

// Snapshot is the result of one render pass
type Snapshot struct {
	Revision   uint64
	Document   models.Document
	Pages      []Page
	Scales     []PageScale
	Width      float64
	Hidden     bool // Preview column hidden, as persisted in the preferences
	RenderedAt time.Time
}

// PageHeights returns the height each sheet occupies on screen before scaling
func (s *Snapshot) PageHeights() []float64 {
	heights := make([]float64, len(s.Pages))
	for i := range heights {
		heights[i] = SheetHeight
	}
	return heights
}

// FormView is a copy of the raw form, for the editing UI
type FormView struct {
	Fields   map[string]string         `json:"fields"`
	Sections map[string][]SectionInput `json:"sections"`
	Rows     []MeasurementInput        `json:"rows"`
	Images   []ImageEntry              `json:"images"`
	Revision uint64                    `json:"revision"`
}

// Workspace owns the report being composed. Form edits bump the revision and
// request a render; the latest render is kept as a Snapshot.
type Workspace struct {
	mu       sync.Mutex
	form     *FormState
	width    float64
	snapshot *Snapshot

	renderMu  sync.Mutex
	revision  atomic.Uint64
	renderer  *Renderer
	paginator *Paginator
	scaler    PreviewScaler
	prefs     PreferenceStore
	ingestor  *Ingestor
	scheduler *RenderScheduler

	transitionDelay time.Duration
}

// WorkspaceOptions configures a Workspace
type WorkspaceOptions struct {
	Renderer     *Renderer
	Paginator    *Paginator
	Preferences  PreferenceStore
	MaxImageSize int64
}

// NewWorkspace creates a workspace holding a fresh default report
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	w := &Workspace{
		form:            NewDefaultFormState(),
		renderer:        opts.Renderer,
		paginator:       opts.Paginator,
		scaler:          NewPreviewScaler(),
		prefs:           opts.Preferences,
		transitionDelay: PreviewTransitionDelay,
	}
	if w.prefs == nil {
		w.prefs = NewMemoryPreferenceStore()
	}
	w.scheduler = NewRenderScheduler(w.renderPass)
	w.ingestor = NewIngestor(&w.mu, w.form.Images, opts.MaxImageSize, w.touch)
	return w
}

// touch records a form change and asks for a render
func (w *Workspace) touch() {
	w.revision.Add(1)
	w.scheduler.Request()
}

// Revision returns the number of form changes so far
func (w *Workspace) Revision() uint64 {
	return w.revision.Load()
}

// Document collects the current form
func (w *Workspace) Document() models.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return CollectDocument(w.form)
}

// Form returns a copy of the raw form
func (w *Workspace) Form() FormView {
	w.mu.Lock()
	defer w.mu.Unlock()

	view := FormView{
		Fields:   make(map[string]string, len(w.form.Fields)),
		Sections: make(map[string][]SectionInput, len(SectionKinds)),
		Rows:     append([]MeasurementInput{}, w.form.Rows...),
		Images:   w.form.Images.Entries(),
		Revision: w.Revision(),
	}
	for k, v := range w.form.Fields {
		view.Fields[k] = v
	}
	for _, kind := range SectionKinds {
		view.Sections[kind] = append([]SectionInput{}, w.form.Sections[kind]...)
	}
	return view
}

// edit applies fn to the form under the lock and requests a render on success
func (w *Workspace) edit(fn func(f *FormState) error) error {
	w.mu.Lock()
	err := fn(w.form)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.touch()
	return nil
}

// SetField sets a scalar field
func (w *Workspace) SetField(key, value string) error {
	return w.edit(func(f *FormState) error { return f.SetField(key, value) })
}

// AddSection appends a section block of the given kind
func (w *Workspace) AddSection(kind string, in SectionInput) (int, error) {
	var index int
	err := w.edit(func(f *FormState) error {
		var err error
		index, err = f.AddSection(kind, in)
		return err
	})
	return index, err
}

// UpdateSection replaces a section block
func (w *Workspace) UpdateSection(kind string, index int, in SectionInput) error {
	return w.edit(func(f *FormState) error { return f.UpdateSection(kind, index, in) })
}

// RemoveSection deletes a section block
func (w *Workspace) RemoveSection(kind string, index int) error {
	return w.edit(func(f *FormState) error { return f.RemoveSection(kind, index) })
}

// AddRow appends a measurement row
func (w *Workspace) AddRow(in MeasurementInput) int {
	var index int
	w.edit(func(f *FormState) error {
		index = f.AddRow(in)
		return nil
	})
	return index
}

// UpdateRow replaces a measurement row
func (w *Workspace) UpdateRow(index int, in MeasurementInput) error {
	return w.edit(func(f *FormState) error { return f.UpdateRow(index, in) })
}

// RemoveRow deletes a measurement row
func (w *Workspace) RemoveRow(index int) error {
	return w.edit(func(f *FormState) error { return f.RemoveRow(index) })
}

// ReplaceRows replaces the whole measurement table
func (w *Workspace) ReplaceRows(rows []MeasurementInput) {
	w.edit(func(f *FormState) error {
		f.Rows = append([]MeasurementInput{}, rows...)
		return nil
	})
}

// SubmitImages starts decoding uploaded files and returns their placeholder ids
func (w *Workspace) SubmitImages(ctx context.Context, files []ImageFile) []string {
	return w.ingestor.Submit(ctx, files)
}

// WaitImages blocks until every submitted image has been decoded
func (w *Workspace) WaitImages() {
	w.ingestor.Wait()
}

// SetImageCaption updates the caption of an image
func (w *Workspace) SetImageCaption(id, caption string) error {
	return w.edit(func(f *FormState) error { return f.Images.SetCaption(id, caption) })
}

// DeleteImage removes an image, invalidating its decode if still running
func (w *Workspace) DeleteImage(id string) error {
	return w.edit(func(f *FormState) error { return f.Images.Delete(id) })
}

// Export returns the interchange file of the current report
func (w *Workspace) Export() (string, []byte, error) {
	doc := w.Document()
	data, err := ExportDocument(doc)
	if err != nil {
		return "", nil, err
	}
	return ExportFilename(doc), data, nil
}

// Import restores a report file. The file is parsed completely before the
// form is touched, so a bad file changes nothing.
func (w *Workspace) Import(data []byte) error {
	payload, err := ParseImport(data)
	if err != nil {
		return err
	}
	return w.edit(func(f *FormState) error {
		payload.Apply(f)
		return nil
	})
}

// Reset discards the report and starts over from the defaults
func (w *Workspace) Reset() {
	w.edit(func(f *FormState) error {
		images := f.Images
		images.Clear()
		fresh := NewDefaultFormState()
		f.Fields = fresh.Fields
		f.Sections = fresh.Sections
		f.Rows = fresh.Rows
		f.Images = images
		return nil
	})
}

// renderPass is the scheduled render: collect, render blocks, paginate, scale
func (w *Workspace) renderPass() {
	ctx, cancel := context.WithTimeout(context.Background(), renderTimeout)
	defer cancel()
	if _, err := w.render(ctx); err != nil {
		log.Printf("[ERROR] Preview render failed: %v", err)
	}
}

func (w *Workspace) render(ctx context.Context) (*Snapshot, error) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	w.mu.Lock()
	revision := w.Revision()
	if w.snapshot != nil && w.snapshot.Revision == revision {
		w.syncScaleLocked()
		snap := w.snapshot
		w.mu.Unlock()
		return snap, nil
	}
	doc := CollectDocument(w.form)
	width := w.width
	w.mu.Unlock()

	blocks := w.renderer.RenderBlocks(doc)
	pages, err := w.paginator.Paginate(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate report: %w", err)
	}

	snap := &Snapshot{
		Revision:   revision,
		Document:   doc,
		Pages:      pages,
		Width:      width,
		RenderedAt: time.Now(),
	}
	snap.Scales = w.scaler.Scale(width, snap.PageHeights())

	w.mu.Lock()
	if w.snapshot == nil || w.snapshot.Revision <= revision {
		w.snapshot = snap
	}
	// The column may have been resized while paginating
	w.syncScaleLocked()
	snap = w.snapshot
	w.mu.Unlock()
	return snap, nil
}

// Preview returns an up-to-date render scaled for a preview column of the
// given width. A non-positive width keeps the last known width.
func (w *Workspace) Preview(ctx context.Context, width float64) (*Snapshot, error) {
	if width > 0 {
		w.Resize(width)
	}
	w.scheduler.Flush()
	snap, err := w.render(ctx)
	if err != nil {
		return nil, err
	}

	hidden, err := w.PreviewHidden(ctx)
	if err != nil {
		log.Printf("[WARNING] Could not read preview preference: %v", err)
	}
	view := *snap
	view.Hidden = hidden
	return &view, nil
}

// Resize records the preview column width and rescales the current sheets
func (w *Workspace) Resize(width float64) {
	w.mu.Lock()
	w.width = width
	w.mu.Unlock()
	w.rescale()
}

func (w *Workspace) rescale() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rescaleLocked()
}

func (w *Workspace) rescaleLocked() {
	if w.snapshot == nil {
		return
	}
	// Snapshots are shared with readers, so rescaling makes a new one
	snap := *w.snapshot
	snap.Width = w.width
	snap.Scales = w.scaler.Scale(w.width, snap.PageHeights())
	w.snapshot = &snap
}

func (w *Workspace) syncScaleLocked() {
	if w.snapshot != nil && w.snapshot.Width != w.width {
		w.rescaleLocked()
	}
}

// PreviewHidden returns the persisted preview visibility preference
func (w *Workspace) PreviewHidden(ctx context.Context) (bool, error) {
	return w.prefs.GetBool(ctx, models.PreferenceHidePreview, false)
}

// SetPreviewHidden persists the preview visibility and rescales the sheets
// once the column transition is over
func (w *Workspace) SetPreviewHidden(ctx context.Context, hidden bool) error {
	if err := w.prefs.SetBool(ctx, models.PreferenceHidePreview, hidden); err != nil {
		return err
	}
	time.AfterFunc(w.transitionDelay, w.rescale)
	return nil
}

// TogglePreview flips the preview visibility and returns the new state
func (w *Workspace) TogglePreview(ctx context.Context) (bool, error) {
	hidden, err := w.PreviewHidden(ctx)
	if err != nil {
		return false, err
	}
	if err := w.SetPreviewHidden(ctx, !hidden); err != nil {
		return false, err
	}
	return !hidden, nil
}
