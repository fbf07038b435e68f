package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"tim_report_app_go/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrNotAnImage    = errors.New("file is not a supported image")
	ErrImageTooLarge = errors.New("image exceeds the maximum size")
)

// ImageEntry is one picture attached to the report. A pending entry is a
// placeholder whose file is still being decoded.
type ImageEntry struct {
	ID      string `json:"id"`
	Src     string `json:"src,omitempty"`
	Caption string `json:"caption"`
	Pending bool   `json:"pending"`

	cancel context.CancelFunc
}

// ImageList is the ordered, content-addressed list of report images.
// It is not safe for concurrent use; callers hold the workspace lock.
type ImageList struct {
	entries []*ImageEntry
	index   map[[blake2b.Size256]byte]string // content digest -> entry id
}

// NewImageList returns an empty image list
func NewImageList() *ImageList {
	return &ImageList{index: make(map[[blake2b.Size256]byte]string)}
}

func contentDigest(src string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(src))
}

// Len returns the number of entries, pending ones included
func (l *ImageList) Len() int {
	return len(l.entries)
}

// Entries returns a copy of every entry in display order
func (l *ImageList) Entries() []ImageEntry {
	out := make([]ImageEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	return out
}

// Ready returns the decoded images in display order
func (l *ImageList) Ready() []models.Image {
	out := make([]models.Image, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Pending {
			continue
		}
		out = append(out, models.Image{Src: e.Src, Caption: e.Caption})
	}
	return out
}

// Contains reports whether an entry already holds exactly this content
func (l *ImageList) Contains(src string) bool {
	id, ok := l.index[contentDigest(src)]
	if !ok {
		return false
	}
	e := l.find(id)
	return e != nil && e.Src == src
}

func (l *ImageList) find(id string) *ImageEntry {
	for _, e := range l.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (l *ImageList) position(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Add appends a decoded image unless its content is already present.
// Duplicates are dropped silently; ok is false in that case.
func (l *ImageList) Add(src, caption string) (ImageEntry, bool) {
	if l.Contains(src) {
		return ImageEntry{}, false
	}
	e := &ImageEntry{ID: uuid.New().String(), Src: src, Caption: caption}
	l.entries = append(l.entries, e)
	l.index[contentDigest(src)] = e.ID
	return *e, true
}

// Reserve appends a pending placeholder. Cancelling the returned context's
// parent or deleting the entry invalidates the decode bound to it.
func (l *ImageList) Reserve(parent context.Context) (string, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	e := &ImageEntry{ID: uuid.New().String(), Pending: true, cancel: cancel}
	l.entries = append(l.entries, e)
	return e.ID, ctx
}

// ImageOutcome is what happened to a decoded image once it reached the list
type ImageOutcome int

const (
	ImageAccepted  ImageOutcome = iota
	ImageDuplicate              // Same content already present, placeholder removed
	ImageDiscarded              // Placeholder deleted while decoding
)

func (o ImageOutcome) String() string {
	switch o {
	case ImageAccepted:
		return "accepted"
	case ImageDuplicate:
		return "duplicate"
	default:
		return "discarded"
	}
}

// Resolve completes the pending placeholder id with decoded content
func (l *ImageList) Resolve(id, src string) ImageOutcome {
	e := l.find(id)
	if e == nil || !e.Pending {
		return ImageDiscarded
	}
	if l.Contains(src) {
		l.remove(id)
		return ImageDuplicate
	}
	e.Src = src
	e.Pending = false
	e.cancel()
	e.cancel = nil
	l.index[contentDigest(src)] = e.ID
	return ImageAccepted
}

// Abandon removes a pending placeholder whose decode failed
func (l *ImageList) Abandon(id string) {
	if e := l.find(id); e != nil && e.Pending {
		l.remove(id)
	}
}

// Delete removes an entry and cancels its in-flight decode, if any
func (l *ImageList) Delete(id string) error {
	if l.find(id) == nil {
		return ErrImageNotFound
	}
	l.remove(id)
	return nil
}

func (l *ImageList) remove(id string) {
	i := l.position(id)
	if i < 0 {
		return
	}
	e := l.entries[i]
	if e.cancel != nil {
		e.cancel()
	}
	l.entries = append(l.entries[:i:i], l.entries[i+1:]...)

	if e.Pending {
		return
	}
	digest := contentDigest(e.Src)
	if l.index[digest] != id {
		return
	}
	delete(l.index, digest)
	// A restored file may hold the same content twice; keep it addressable
	for _, other := range l.entries {
		if !other.Pending && other.Src == e.Src {
			l.index[digest] = other.ID
			break
		}
	}
}

// SetCaption updates the caption of an entry
func (l *ImageList) SetCaption(id, caption string) error {
	e := l.find(id)
	if e == nil {
		return ErrImageNotFound
	}
	e.Caption = caption
	return nil
}

// Clear removes every entry and cancels pending decodes
func (l *ImageList) Clear() {
	for _, e := range l.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	l.entries = nil
	l.index = make(map[[blake2b.Size256]byte]string)
}

// Restore re-attaches images from an imported file by their stored URI,
// without decoding them again.
func (l *ImageList) Restore(images []models.Image) {
	for _, img := range images {
		e := &ImageEntry{ID: uuid.New().String(), Src: img.Src, Caption: img.Caption}
		l.entries = append(l.entries, e)
		digest := contentDigest(img.Src)
		if _, ok := l.index[digest]; !ok {
			l.index[digest] = e.ID
		}
	}
}

// ImageFile is an uploaded file waiting to be decoded
type ImageFile struct {
	Name string
	Data []byte
}

// Formats the print surface keeps as data URIs
var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// DecodeImage turns raw image bytes into a data URI
func DecodeImage(ctx context.Context, f ImageFile, maxSize int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.Data) == 0 {
		return "", ErrNotAnImage
	}
	if maxSize > 0 && int64(len(f.Data)) > maxSize {
		return "", ErrImageTooLarge
	}

	mimeType := http.DetectContentType(f.Data)
	if !supportedImageTypes[mimeType] {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mimeType)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}

// Ingestor decodes uploaded files in the background and merges the results
// into an ImageList guarded by mu.
type Ingestor struct {
	mu      sync.Locker
	list    *ImageList
	notify  func()
	maxSize int64

	wg sync.WaitGroup
}

// NewIngestor creates an ingestor. notify is called after every change to the list.
func NewIngestor(mu sync.Locker, list *ImageList, maxSize int64, notify func()) *Ingestor {
	if notify == nil {
		notify = func() {}
	}
	return &Ingestor{mu: mu, list: list, notify: notify, maxSize: maxSize}
}

// Submit reserves one placeholder per file, in order, and decodes the files
// concurrently. It returns the placeholder ids.
func (in *Ingestor) Submit(ctx context.Context, files []ImageFile) []string {
	ids := make([]string, 0, len(files))
	tokens := make([]context.Context, 0, len(files))

	in.mu.Lock()
	for range files {
		id, token := in.list.Reserve(context.WithoutCancel(ctx))
		ids = append(ids, id)
		tokens = append(tokens, token)
	}
	in.mu.Unlock()
	in.notify()

	for i, f := range files {
		in.wg.Add(1)
		go in.decode(tokens[i], ids[i], f)
	}
	return ids
}

func (in *Ingestor) decode(token context.Context, id string, f ImageFile) {
	defer in.wg.Done()

	src, err := DecodeImage(token, f, in.maxSize)

	in.mu.Lock()
	if err != nil {
		in.list.Abandon(id)
		in.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			log.Printf("[WARNING] Dropping image %q: %v", f.Name, err)
		}
		in.notify()
		return
	}
	outcome := in.list.Resolve(id, src)
	in.mu.Unlock()

	if outcome != ImageAccepted {
		log.Printf("[INFO] Image %q %s", f.Name, outcome)
	}
	in.notify()
}

// Wait blocks until every submitted decode has completed
func (in *Ingestor) Wait() {
	in.wg.Wait()
}
