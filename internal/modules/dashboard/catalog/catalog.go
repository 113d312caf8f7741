// Package catalog loads field catalogs: INI files mapping the station's
// numbered columns to display labels and unit conversions.
//
// A simple catalog has one section per displayed field:
//
//	[fields.Temperature]
//	fn   = 120
//	unit = F-C
//
// A diagnostic catalog pairs a raw column with its converted counterpart:
//
//	[fields.Air Temp]
//	rawFN   = 217
//	convFN  = 191
//	conName = Air Temperature
//
// Sections whose name does not start with "fields." are ignored.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/mvhdi/Weather-Station/internal/modules/dashboard/convert"
)

const sectionPrefix = "fields."

// FieldSpec maps one column to a displayed entry.
type FieldSpec struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Code  convert.Code `json:"code"`
	// Unit is the catalog's unit string. For fields without a conversion
	// formula it is the label shown next to the value.
	Unit           string `json:"unit,omitempty"`
	ConvertedKey   string `json:"convertedKey,omitempty"`
	ConvertedLabel string `json:"convertedLabel,omitempty"`
	Diagnostic     bool   `json:"diagnostic,omitempty"`
}

// Catalog is the ordered field list of one catalog file.
type Catalog struct {
	Source string      `json:"source"`
	Fields []FieldSpec `json:"fields"`
}

// Diagnostic reports whether the catalog pairs raw and converted columns.
func (c Catalog) Diagnostic() bool {
	for _, f := range c.Fields {
		if f.Diagnostic {
			return true
		}
	}
	return false
}

type ErrorKind int

const (
	NotFound ErrorKind = iota + 1
	MalformedEntry
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case MalformedEntry:
		return "malformed entry"
	default:
		return "unknown"
	}
}

var (
	ErrNotFound       = errors.New("catalog not found")
	ErrMalformedEntry = errors.New("catalog entry malformed")
)

// ConfigError reports a catalog that could not be loaded.
type ConfigError struct {
	Kind    ErrorKind
	Source  string
	Section string
	Key     string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "catalog %s: %s", e.Source, e.Kind)
	if e.Section != "" {
		fmt.Fprintf(&b, ": section [%s]", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": key %q", e.Key)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrMalformedEntry:
		return e.Kind == MalformedEntry
	}
	return false
}

// Loader reads catalogs from a directory tree.
type Loader struct {
	fsys fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads and parses sourceID, a slash-separated path relative to the
// loader's root. Nothing is cached: every call reads the file again.
func (l *Loader) Load(sourceID string) (Catalog, error) {
	name := path.Clean(strings.TrimPrefix(sourceID, "/"))
	if !fs.ValidPath(name) || name == "." {
		return Catalog{}, &ConfigError{Kind: NotFound, Source: sourceID, Err: errors.New("invalid catalog path")}
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return Catalog{}, &ConfigError{Kind: NotFound, Source: sourceID, Err: err}
	}
	return Parse(sourceID, data)
}

// Parse builds a catalog from INI text. A ";" or "#" preceded by a space
// starts an inline comment, so "fn = 120 ; outdoor" reads as 120.
func Parse(source string, data []byte) (Catalog, error) {
	f, err := ini.LoadSources(ini.LoadOptions{SpaceBeforeInlineComment: true}, data)
	if err != nil {
		return Catalog{}, &ConfigError{Kind: MalformedEntry, Source: source, Err: err}
	}

	cat := Catalog{Source: source}
	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), sectionPrefix) {
			continue
		}
		spec, err := parseSection(sec)
		if err != nil {
			err.Source = source
			return Catalog{}, err
		}
		cat.Fields = append(cat.Fields, spec)
	}
	return cat, nil
}

func parseSection(sec *ini.Section) (FieldSpec, *ConfigError) {
	label := strings.TrimSpace(strings.TrimPrefix(sec.Name(), sectionPrefix))
	if label == "" {
		return FieldSpec{}, &ConfigError{Kind: MalformedEntry, Section: sec.Name(), Err: errors.New("empty field label")}
	}
	unit := value(sec, "unit")

	if sec.HasKey("rawFN") || sec.HasKey("convFN") {
		spec := FieldSpec{
			Key:            value(sec, "rawFN"),
			Label:          label,
			Code:           convert.ParseCode(unit),
			Unit:           unit,
			ConvertedKey:   value(sec, "convFN"),
			ConvertedLabel: value(sec, "conName"),
			Diagnostic:     true,
		}
		if spec.Key == "" && spec.ConvertedKey == "" {
			return FieldSpec{}, &ConfigError{Kind: MalformedEntry, Section: sec.Name(), Key: "rawFN",
				Err: errors.New("rawFN and convFN are both empty")}
		}
		return spec, nil
	}

	key := value(sec, "fn")
	if key == "" {
		return FieldSpec{}, &ConfigError{Kind: MalformedEntry, Section: sec.Name(), Key: "fn", Err: errors.New("missing raw field")}
	}
	if !sec.HasKey("unit") {
		return FieldSpec{}, &ConfigError{Kind: MalformedEntry, Section: sec.Name(), Key: "unit", Err: errors.New("missing unit")}
	}
	return FieldSpec{
		Key:   key,
		Label: label,
		Code:  convert.ParseCode(unit),
		Unit:  unit,
	}, nil
}

// value reads key without creating it; Section.Key adds missing keys.
func value(sec *ini.Section, key string) string {
	if !sec.HasKey(key) {
		return ""
	}
	return strings.TrimSpace(sec.Key(key).String())
}
