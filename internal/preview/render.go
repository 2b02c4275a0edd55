package preview

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/studyshare/studyshare-client/internal/logging"
)

// Fetcher performs the secondary loads some strategies need.
type Fetcher interface {
	// FetchText returns up to maxBytes of the body at url.
	FetchText(ctx context.Context, url string, maxBytes int64) (string, error)
	// Probe checks that url can be loaded.
	Probe(ctx context.Context, url string) error
}

// Field is a labelled metadata value shown on cards.
type Field struct {
	Label string
	Value string
}

// Target describes the resource to render.
type Target struct {
	ResourceID int64
	Title      string
	// FileName is the stored file path; its extension drives classification.
	FileName string
	// RawURL is used when ResourceID is not set.
	RawURL string
	Fields []Field
}

// Outcome reports what Render did.
type Outcome struct {
	Ref      ResolvedFileRef
	Strategy Strategy
	// Fallback is set when the selected viewer failed and the download
	// presentation was shown instead.
	Fallback bool
	// Cause is the render failure behind a fallback.
	Cause error
}

var cardLabels = map[Category]string{
	Document:     "Microsoft Word Document",
	Presentation: "PowerPoint Presentation",
	Spreadsheet:  "Excel Spreadsheet",
}

var cardIcons = map[Category]string{
	Document:     "[DOC]",
	Presentation: "[PPT]",
	Spreadsheet:  "[XLS]",
}

var viewerLabels = map[Strategy]string{
	InlineFrame:       "PDF Document",
	ImageWithFallback: "Image",
	NativeVideo:       "Video",
	NativeAudio:       "Audio",
	TextExcerpt:       "Text Document",
}

// Renderer writes terminal presentations of resources.
type Renderer struct {
	resolver *Resolver
	fetcher  Fetcher
	log      logging.Logger
}

func NewRenderer(resolver *Resolver, fetcher Fetcher, log logging.Logger) *Renderer {
	return &Renderer{resolver: resolver, fetcher: fetcher, log: log}
}

// Render writes the presentation of t to w. A viewer that fails to load
// degrades to the download presentation; the returned error is only ever a
// write error on w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, t Target) (Outcome, error) {
	ref := r.resolver.Resolve(t.FileName, t.RawURL, t.ResourceID)

	out := Outcome{Ref: ref, Strategy: StrategyFor(ref.Category)}
	p := &printer{w: w}

	name := displayName(t)
	p.printf("== %s [%s]\n", name, ref.Category)

	var excerpt string
	var truncated bool

	switch {
	case out.Strategy == TextExcerpt:
		text, err := r.fetcher.FetchText(ctx, ref.URL, excerptFetchBytes)
		if err != nil {
			out.Fallback, out.Cause = true, err
			break
		}
		excerpt, truncated = Excerpt(text)
	case out.Strategy.needsProbe():
		if err := r.fetcher.Probe(ctx, ref.URL); err != nil {
			out.Fallback, out.Cause = true, err
		}
	}

	if out.Fallback {
		r.log.Warn(ctx, "preview failed, falling back to download",
			"resource_id", t.ResourceID, "category", ref.Category.String(), "url", ref.URL, "error", out.Cause)
		p.printf("Unable to preview %s content\n", strings.ToLower(viewerLabels[out.Strategy]))
		p.printf("  Download: %s\n", r.downloadURL(t, ref))
		return out, p.err
	}

	switch out.Strategy {
	case InlineFrame:
		p.printf("%s\n  View:     %s\n  Download: %s\n", viewerLabels[InlineFrame], ref.URL, r.downloadURL(t, ref))
	case ImageWithFallback:
		p.printf("%s\n  View:     %s\n", viewerLabels[ImageWithFallback], ref.URL)
	case NativeVideo, NativeAudio:
		p.printf("%s\n  Play:     %s\n", viewerLabels[out.Strategy], ref.URL)
	case TextExcerpt:
		p.printf("%s\n", viewerLabels[TextExcerpt])
		p.printf("%s", excerpt)
		if truncated {
			p.printf("%s", TruncationMarker)
		}
		p.printf("\n")
	case IconCard:
		p.printf("%s %s\n  %s\n", cardIcons[ref.Category], name, cardLabels[ref.Category])
		for _, f := range t.Fields {
			if f.Value == "" {
				continue
			}
			p.printf("  %-12s %s\n", f.Label+":", f.Value)
		}
		p.printf("  Download: %s\n", r.downloadURL(t, ref))
	default:
		p.printf("%s\n  Preview not available\n  Download: %s\n", name, r.downloadURL(t, ref))
	}

	return out, p.err
}

func (r *Renderer) downloadURL(t Target, ref ResolvedFileRef) string {
	if t.ResourceID > 0 {
		return r.resolver.DownloadURL(t.ResourceID)
	}
	return ref.URL
}

func displayName(t Target) string {
	if t.Title != "" {
		return t.Title
	}
	if t.FileName == "" {
		return "untitled"
	}
	name := t.FileName
	if i := strings.LastIndexByte(name, '/'); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}

// printer remembers the first write error so the rendering code stays flat.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
