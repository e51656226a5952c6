package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	apperrors "studio-journal/backend/pkg/errors"
	"studio-journal/backend/pkg/logger"
)

// Collection directories under the content root
const (
	EssaysDir     = "essays"
	FieldNotesDir = "field-notes"
	ShelfDir      = "shelf"
)

var frontmatterFence = []byte("---")

// Loader reads markdown collections with YAML frontmatter from disk
type Loader struct {
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLoader creates a new content loader
func NewLoader() *Loader {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Loader{
		validate: v,
		logger:   logger.Named("content"),
	}
}

// Load reads every collection under root. Files that fail to parse or
// validate are skipped; a missing collection directory is an empty collection.
func (l *Loader) Load(root string) (*Collections, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperrors.NewContentParseFailed(root, err)
	}
	if !info.IsDir() {
		return nil, apperrors.NewContentParseFailed(root, fmt.Errorf("not a directory"))
	}

	essays, err := loadCollection[Essay](l, filepath.Join(root, EssaysDir))
	if err != nil {
		return nil, err
	}
	notes, err := loadCollection[FieldNote](l, filepath.Join(root, FieldNotesDir))
	if err != nil {
		return nil, err
	}
	shelf, err := loadCollection[ShelfEntry](l, filepath.Join(root, ShelfDir))
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded content",
		zap.String("root", root),
		zap.Int("essays", len(essays)),
		zap.Int("field_notes", len(notes)),
		zap.Int("shelf_entries", len(shelf)),
	)

	return &Collections{
		Essays:       essays,
		FieldNotes:   notes,
		ShelfEntries: shelf,
	}, nil
}

func loadCollection[T any](l *Loader, dir string) ([]Entry[T], error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, apperrors.NewContentParseFailed(dir, err)
	}
	sort.Strings(matches)

	entries := make([]Entry[T], 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewContentParseFailed(path, err)
		}

		entry, err := ParseEntry[T](l, strings.TrimSuffix(filepath.Base(path), ".md"), raw)
		if err != nil {
			l.logger.Warn("Skipping content file", zap.String("path", path), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseEntry decodes and validates one markdown document
func ParseEntry[T any](l *Loader, slug string, raw []byte) (Entry[T], error) {
	var entry Entry[T]

	fm, body, ok := splitFrontmatter(raw)
	if !ok {
		return entry, apperrors.NewContentInvalid(slug, "missing frontmatter")
	}

	if err := yaml.Unmarshal(fm, &entry.Data); err != nil {
		return entry, apperrors.NewContentParseFailed(slug, err)
	}
	if err := l.validate.Struct(entry.Data); err != nil {
		return entry, apperrors.NewContentInvalid(slug, err.Error())
	}

	entry.Slug = slug
	entry.Body = string(body)
	return entry, nil
}

// splitFrontmatter separates a leading "---" fenced block from the body
func splitFrontmatter(raw []byte) (fm, body []byte, ok bool) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(raw, frontmatterFence) {
		return nil, nil, false
	}

	parts := bytes.SplitN(raw, frontmatterFence, 3)
	if len(parts) < 3 {
		return nil, nil, false
	}
	return parts[1], bytes.TrimLeft(parts[2], "\r\n"), true
}
