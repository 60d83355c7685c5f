// Package export writes rendered pages to a storage sink.
//
// Pages are rendered in order and written with Sink.Put. The first failure
// stops the export:
//
//	sink, err := export.NewDirSink("dist")
//	n, err := export.Export(ctx, engine, []export.Page{
//	    {Path: "index.html", Node: home},
//	    {Path: "about/index.html", Node: about},
//	}, sink)
//
// Two sinks are provided: DirSink writes files atomically under a root
// directory, S3Sink uploads objects to a bucket.
package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/markup"
)

// ContentTypeHTML is the content type of exported pages.
const ContentTypeHTML = "text/html; charset=utf-8"

// Sink is the interface for export storage backends.
type Sink interface {
	// Put stores the contents of r under the slash-separated relative path p.
	Put(ctx context.Context, p, contentType string, r io.Reader) error
}

// Renderer renders a page. *tessera.Engine implements it.
type Renderer interface {
	RenderDocument(ctx context.Context, n *markup.Node) (string, error)
	Logger() *slog.Logger
}

// Page is a node tree and the path it is exported to.
type Page struct {
	Path string
	Node *markup.Node
}

// Export renders each page with r and writes it to sink. It returns the
// number of pages written. Failures are E180 errors wrapping the cause.
func Export(ctx context.Context, r Renderer, pages []Page, sink Sink) (int, error) {
	log := r.Logger()
	start := time.Now()

	written := 0
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return written, exportFailed(p.Path, err)
		}

		clean, err := CleanPath(p.Path)
		if err != nil {
			return written, exportFailed(p.Path, err)
		}

		html, err := r.RenderDocument(ctx, p.Node)
		if err != nil {
			return written, exportFailed(clean, err)
		}

		if err := sink.Put(ctx, clean, ContentTypeHTML, strings.NewReader(html)); err != nil {
			return written, exportFailed(clean, err)
		}
		written++
		log.Debug("page exported", "path", clean, "bytes", len(html))
	}

	log.Info("export complete", "pages", written, "duration", time.Since(start))
	return written, nil
}

func exportFailed(p string, err error) error {
	return errors.New("E180").WithDetailf("page %q: %v", p, err).Wrap(err)
}

// CleanPath normalizes an export path. Absolute paths and paths leaving the
// export root are rejected with E181. A trailing slash maps to index.html.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("E181").WithDetail("empty path")
	}
	if strings.ContainsRune(p, '\\') || strings.ContainsRune(p, 0) {
		return "", errors.New("E181").WithDetailf("%q contains a forbidden character", p)
	}
	if strings.HasPrefix(p, "/") {
		return "", errors.New("E181").WithDetailf("%q is absolute", p)
	}

	dir := strings.HasSuffix(p, "/")
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.New("E181").WithDetailf("%q leaves the export root", p)
	}
	if dir || clean == "." {
		clean = path.Join(clean, "index.html")
	}
	return clean, nil
}

// readAll buffers r for sinks that need a seekable body.
func readAll(r io.Reader) (*bytes.Reader, error) {
	if br, ok := r.(*bytes.Reader); ok {
		return br, nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}
