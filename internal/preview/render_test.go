package preview

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyshare/studyshare-client/internal/logging"
)

type fakeFetcher struct {
	text     string
	textErr  error
	probeErr error

	lastTextURL  string
	lastMaxBytes int64
	lastProbeURL string
	textCalls    int
	probeCalls   int
}

func (f *fakeFetcher) FetchText(_ context.Context, url string, maxBytes int64) (string, error) {
	f.textCalls++
	f.lastTextURL, f.lastMaxBytes = url, maxBytes
	return f.text, f.textErr
}

func (f *fakeFetcher) Probe(_ context.Context, url string) error {
	f.probeCalls++
	f.lastProbeURL = url
	return f.probeErr
}

func newTestRenderer(f Fetcher) *Renderer {
	return NewRenderer(NewResolver("http://api.test"), f, logging.Discard())
}

func TestRender_PDFUsesInlineFrameAndServeURL(t *testing.T) {
	f := &fakeFetcher{}
	var buf bytes.Buffer

	out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{
		ResourceID: 3, Title: "Linear Algebra", FileName: "/media/resources/la.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, InlineFrame, out.Strategy)
	assert.False(t, out.Fallback)
	assert.Equal(t, "http://api.test/api/resources/3/serve/", f.lastProbeURL)
	assert.Contains(t, buf.String(), "PDF Document")
	assert.Contains(t, buf.String(), "http://api.test/api/resources/3/download/")
}

func TestRender_TextExcerptTruncates(t *testing.T) {
	f := &fakeFetcher{text: strings.Repeat("x", ExcerptLimit+50)}
	var buf bytes.Buffer

	out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{ResourceID: 1, FileName: "notes.txt"})
	require.NoError(t, err)

	assert.Equal(t, TextExcerpt, out.Strategy)
	assert.Equal(t, int64(excerptFetchBytes), f.lastMaxBytes)
	assert.Contains(t, buf.String(), strings.Repeat("x", ExcerptLimit)+TruncationMarker)
	assert.NotContains(t, buf.String(), strings.Repeat("x", ExcerptLimit+1))
}

func TestRender_ShortTextHasNoMarker(t *testing.T) {
	f := &fakeFetcher{text: "short note"}
	var buf bytes.Buffer

	_, err := newTestRenderer(f).Render(context.Background(), &buf, Target{ResourceID: 1, FileName: "notes.md"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "short note\n")
	assert.NotContains(t, buf.String(), TruncationMarker)
}

func TestRender_TextFetchFailureFallsBackToDownload(t *testing.T) {
	f := &fakeFetcher{textErr: errors.New("503")}
	var buf bytes.Buffer

	out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{ResourceID: 9, FileName: "notes.txt"})
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.EqualError(t, out.Cause, "503")
	assert.Contains(t, buf.String(), "Unable to preview")
	assert.Contains(t, buf.String(), "Download: http://api.test/api/resources/9/download/")
}

func TestRender_MediaProbeFailureFallsBack(t *testing.T) {
	for _, name := range []string{"a.png", "a.mp4", "a.mp3", "a.pdf"} {
		t.Run(name, func(t *testing.T) {
			f := &fakeFetcher{probeErr: errors.New("not found")}
			var buf bytes.Buffer

			out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{ResourceID: 2, FileName: name})
			require.NoError(t, err)
			assert.True(t, out.Fallback)
			assert.NotEmpty(t, buf.String())
			assert.Contains(t, buf.String(), "Download:")
		})
	}
}

func TestRender_IconCardShowsLabelAndFields(t *testing.T) {
	f := &fakeFetcher{}
	var buf bytes.Buffer

	out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{
		ResourceID: 5, FileName: "essay.docx",
		Fields: []Field{{Label: "Subject", Value: "History"}, {Label: "Topic", Value: ""}},
	})
	require.NoError(t, err)

	assert.Equal(t, IconCard, out.Strategy)
	assert.Zero(t, f.probeCalls+f.textCalls, "cards load nothing remotely")
	assert.Contains(t, buf.String(), "[DOC] essay.docx")
	assert.Contains(t, buf.String(), "Microsoft Word Document")
	assert.Contains(t, buf.String(), "Subject:")
	assert.NotContains(t, buf.String(), "Topic:")
}

func TestRender_UnknownShowsDownloadPrompt(t *testing.T) {
	f := &fakeFetcher{}
	var buf bytes.Buffer

	out, err := newTestRenderer(f).Render(context.Background(), &buf, Target{FileName: "bundle.zip", RawURL: "/media/bundle.zip"})
	require.NoError(t, err)

	assert.Equal(t, DownloadPrompt, out.Strategy)
	assert.Equal(t, "http://api.test/media/bundle.zip", out.Ref.URL)
	assert.Contains(t, buf.String(), "Preview not available")
	assert.Contains(t, buf.String(), "Download: http://api.test/media/bundle.zip")
}

func TestRender_EveryCategoryProducesOutput(t *testing.T) {
	names := map[Category]string{
		Unknown: "x.bin", PDF: "x.pdf", Image: "x.gif", Video: "x.mov", Audio: "x.wav",
		Text: "x.rtf", Document: "x.doc", Presentation: "x.ppt", Spreadsheet: "x.xls",
	}
	require.Len(t, names, len(Categories()))

	for c, name := range names {
		var buf bytes.Buffer
		out, err := newTestRenderer(&fakeFetcher{text: "t"}).Render(context.Background(), &buf, Target{ResourceID: 1, FileName: name})
		require.NoError(t, err)
		assert.Equal(t, c, out.Ref.Category)
		assert.Greater(t, strings.Count(buf.String(), "\n"), 1, "category %s rendered too little", c)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRender_ReturnsWriteError(t *testing.T) {
	_, err := newTestRenderer(&fakeFetcher{}).Render(context.Background(), failingWriter{}, Target{FileName: "x.zip"})
	require.EqualError(t, err, "closed pipe")
}
