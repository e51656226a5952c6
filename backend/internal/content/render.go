package content

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	apperrors "studio-journal/backend/pkg/errors"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
)

// RenderHTML converts a markdown body to the HTML the mention locator scans
func RenderHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", apperrors.NewBaseError(apperrors.ErrorTypeContent, "failed to render markdown", err)
	}
	return buf.String(), nil
}
