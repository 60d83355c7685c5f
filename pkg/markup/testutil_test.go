package markup

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
)

// testOptions normalizes o with a debug-level logger writing to the
// returned buffer.
func testOptions(o Options) (*Options, *bytes.Buffer) {
	var buf bytes.Buffer
	o.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewOptions(o), &buf
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustRender(t *testing.T, n *Node) string {
	t.Helper()
	html, err := n.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return html
}

type recordingObserver struct {
	rejected []string
	depth    []int
}

func (o *recordingObserver) Rejected(code, tag string) {
	o.rejected = append(o.rejected, code+":"+tag)
}

func (o *recordingObserver) DepthExceeded(tag string, depth int) {
	o.depth = append(o.depth, depth)
}

type recordingHost struct {
	calls    []string
	resolved map[string]any
}

func (h *recordingHost) Escape(text string) string {
	h.calls = append(h.calls, "Escape")
	return "escaped:" + text
}

func (h *recordingHost) SafeJoin(parts []string) string {
	h.calls = append(h.calls, "SafeJoin")
	return "joined"
}

func (h *recordingHost) WrapTag(tag, inner string, attrs Attrs) string {
	h.calls = append(h.calls, "WrapTag")
	return "<" + tag + ">" + inner + "</" + tag + ">"
}

func (h *recordingHost) ResolveAction(handlerID string, callback any) {
	h.calls = append(h.calls, "ResolveAction")
	if h.resolved == nil {
		h.resolved = make(map[string]any)
	}
	h.resolved[handlerID] = callback
}

func (h *recordingHost) CSRFToken() string {
	h.calls = append(h.calls, "CSRFToken")
	return "token-123"
}
