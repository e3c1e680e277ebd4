package reports

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// HTML renders the report's markdown form to an HTML fragment.
func (r Report) HTML() (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(r.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("reports: render html: %w", err)
	}
	return buf.String(), nil
}
