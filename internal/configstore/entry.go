package configstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hospital-server/shared/models"
)

// Entry is the cached value together with its write stamp.
type Entry struct {
	General   models.GeneralConfig
	Timestamp int64 // ms since epoch
	Version   int64 // general_config.version the value was read at; 0 when unknown
}

// age returns how old the entry is relative to now.
func (e *Entry) age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}

// fileEntry is the current on-disk schema:
// {"general": {...}, "timestamp": <ms>, "version": <n>}.
type fileEntry struct {
	General   models.GeneralConfig `json:"general"`
	Timestamp int64                `json:"timestamp"`
	Version   int64                `json:"version,omitempty"`
}

func encodeEntry(e *Entry) ([]byte, error) {
	return json.MarshalIndent(fileEntry{
		General:   e.General,
		Timestamp: e.Timestamp,
		Version:   e.Version,
	}, "", "  ")
}

// entryFormat tags which schema a file was decoded from.
type entryFormat int

const (
	formatNested entryFormat = iota
	formatLegacy
)

func (f entryFormat) String() string {
	if f == formatLegacy {
		return "legacy"
	}
	return "nested"
}

var (
	errNotNested  = errors.New("document has no general section")
	errNotLegacy  = errors.New("document is not a legacy general config")
	errBadNested  = errors.New("general section is incomplete")
	errBadPayload = errors.New("cache file is not a JSON object")
)

// Поля ниже - указатели, чтобы отличать отсутствие поля от пустого значения.
type nestedDoc struct {
	General *struct {
		Title   string               `json:"title"`
		Color   *models.ColorPalette `json:"color"`
		Theme   string               `json:"theme"`
		LogoURL *string              `json:"logoUrl"`
	} `json:"general"`
	Timestamp *float64 `json:"timestamp"`
	Version   int64    `json:"version"`
}

type legacyDoc struct {
	Title     string   `json:"title"`
	Color     *colors  `json:"color"`
	Theme     string   `json:"theme"`
	LogoURL   *string  `json:"logoUrl"`
	Timestamp *float64 `json:"timestamp"`
}

// colors is the legacy palette, where any member may be missing.
type colors struct {
	HeaderColor    string `json:"headerColor"`
	ContentColor   string `json:"contentColor"`
	ContainerColor string `json:"containerColor"`
}

// parseNested decodes the nested schema strictly.
func parseNested(data []byte) (*Entry, error) {
	var doc nestedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.General == nil {
		return nil, errNotNested
	}
	g := doc.General
	switch {
	case g.Title == "":
		return nil, fmt.Errorf("%w: title is missing", errBadNested)
	case g.Color == nil:
		return nil, fmt.Errorf("%w: color is missing", errBadNested)
	case g.Theme == "":
		return nil, fmt.Errorf("%w: theme is missing", errBadNested)
	case doc.Timestamp == nil:
		return nil, fmt.Errorf("%w: timestamp is missing", errBadNested)
	}
	return &Entry{
		General: models.GeneralConfig{
			Title:   g.Title,
			Color:   *g.Color,
			Theme:   g.Theme,
			LogoURL: g.LogoURL,
		},
		Timestamp: int64(*doc.Timestamp),
		Version:   doc.Version,
	}, nil
}

// parseLegacy decodes the flat schema that predates the "general" wrapper.
// A missing timestamp is stamped with now; missing colors take the defaults.
func parseLegacy(data []byte, now time.Time) (*Entry, error) {
	var doc legacyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Title == "" || doc.Theme == "" {
		return nil, errNotLegacy
	}

	palette := models.DefaultColorPalette()
	if doc.Color != nil {
		if doc.Color.HeaderColor != "" {
			palette.HeaderColor = doc.Color.HeaderColor
		}
		if doc.Color.ContentColor != "" {
			palette.ContentColor = doc.Color.ContentColor
		}
		if doc.Color.ContainerColor != "" {
			palette.ContainerColor = doc.Color.ContainerColor
		}
	}

	ts := now.UnixMilli()
	if doc.Timestamp != nil {
		ts = int64(*doc.Timestamp)
	}

	return &Entry{
		General: models.GeneralConfig{
			Title:   doc.Title,
			Color:   palette,
			Theme:   doc.Theme,
			LogoURL: doc.LogoURL,
		},
		Timestamp: ts,
	}, nil
}

// parseEntry tries the nested schema first and falls back to the legacy one.
// A document with a non-null "general" key is never reinterpreted as legacy.
func parseEntry(data []byte, now time.Time) (*Entry, entryFormat, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, 0, errBadPayload
	}

	entry, err := parseNested(trimmed)
	if err == nil {
		return entry, formatNested, nil
	}
	if !errors.Is(err, errNotNested) {
		return nil, 0, err
	}

	entry, err = parseLegacy(trimmed, now)
	if err != nil {
		return nil, 0, err
	}
	return entry, formatLegacy, nil
}
