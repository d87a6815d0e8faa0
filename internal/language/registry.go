package language

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	xlanguage "golang.org/x/text/language"

	"horse.fit/easydict/internal/backend"
)

// Auto is the requested source language that asks for detection.
const Auto = "auto"

var ErrNotFound = errors.New("language not found")

// Record is one language with the codes each backend uses for it.
// A backend missing from Codes cannot serve the language.
type Record struct {
	ID           string
	Title        string
	ChineseTitle string
	Codes        map[backend.ID]string
	// DetectCodes holds codes a backend only uses in detection responses.
	DetectCodes map[backend.ID]string
	WebCodes    map[string]string
	Voices      []string
}

// Option is the serializable form of a record for language pickers.
type Option struct {
	Code   string   `json:"code"`
	Label  string   `json:"label"`
	Native string   `json:"native,omitempty"`
	Voices []string `json:"voices,omitempty"`
}

// Registry is an immutable language table. It is safe for concurrent use.
type Registry struct {
	records map[string]Record
	order   []string
	// reverse maps backend -> backend code -> canonical id.
	reverse map[backend.ID]map[string]string
	folded  map[string]string
}

// NewRegistry validates records and builds lookup indexes. Canonical ids
// must be unique, and no backend code may belong to two languages.
func NewRegistry(records []Record) (*Registry, error) {
	r := &Registry{
		records: make(map[string]Record, len(records)),
		order:   make([]string, 0, len(records)),
		reverse: make(map[backend.ID]map[string]string),
		folded:  make(map[string]string, len(records)),
	}

	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("language record with title %q has no id", rec.Title)
		}
		if id == Auto {
			return nil, fmt.Errorf("language id %q is reserved", Auto)
		}
		if _, exists := r.records[id]; exists {
			return nil, fmt.Errorf("duplicate language id %q", id)
		}
		rec.ID = id
		r.records[id] = rec
		r.order = append(r.order, id)
		r.folded[strings.ToLower(id)] = id

		for b, code := range rec.Codes {
			if err := r.index(b, code, id); err != nil {
				return nil, err
			}
		}
		for b, code := range rec.DetectCodes {
			if err := r.index(b, code, id); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) index(b backend.ID, code, id string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("language %q has an empty %s code", id, b)
	}
	codes, ok := r.reverse[b]
	if !ok {
		codes = make(map[string]string)
		r.reverse[b] = codes
	}
	key := strings.ToLower(code)
	if owner, exists := codes[key]; exists && owner != id {
		return fmt.Errorf("%s code %q is used by both %q and %q", b, code, owner, id)
	}
	codes[key] = id
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the builtin table.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(builtinRecords)
		if err != nil {
			panic(fmt.Sprintf("builtin language table is invalid: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Lookup returns the record for a canonical id.
func (r *Registry) Lookup(id string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	rec, ok := r.records[id]
	return rec, ok
}

// CodeFor returns the backend's code for a canonical id. A false result
// means the backend does not serve the language.
func (r *Registry) CodeFor(id string, b backend.ID) (string, bool) {
	rec, ok := r.Lookup(id)
	if !ok {
		return "", false
	}
	code, ok := rec.Codes[b]
	return code, ok
}

// DetectCodeFor is CodeFor for detection APIs, preferring detection-only codes.
func (r *Registry) DetectCodeFor(id string, b backend.ID) (string, bool) {
	rec, ok := r.Lookup(id)
	if !ok {
		return "", false
	}
	if code, ok := rec.DetectCodes[b]; ok {
		return code, true
	}
	code, ok := rec.Codes[b]
	return code, ok
}

// WebCodeFor returns the code a dictionary website uses for a language.
func (r *Registry) WebCodeFor(id, site string) (string, bool) {
	rec, ok := r.Lookup(id)
	if !ok {
		return "", false
	}
	code, ok := rec.WebCodes[site]
	return code, ok
}

// CanonicalFor maps a backend code back to its canonical id.
// A false result means the code is unknown to the table.
func (r *Registry) CanonicalFor(b backend.ID, code string) (string, bool) {
	if r == nil {
		return "", false
	}
	codes, ok := r.reverse[b]
	if !ok {
		return "", false
	}
	id, ok := codes[strings.ToLower(strings.TrimSpace(code))]
	return id, ok
}

// Supports reports whether a backend can serve the source/target pair.
func (r *Registry) Supports(b backend.ID, source, target string) bool {
	if _, ok := r.CodeFor(source, b); !ok {
		return false
	}
	_, ok := r.CodeFor(target, b)
	return ok
}

// Resolve maps a user-supplied tag ("zh_TW", "EN-us", "pt-BR", "zh-CHS")
// to a canonical id. "auto" resolves to itself.
func (r *Registry) Resolve(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrNotFound
	}
	if strings.EqualFold(trimmed, Auto) {
		return Auto, nil
	}
	if id, ok := r.folded[strings.ToLower(trimmed)]; ok {
		return id, nil
	}
	if id, ok := r.CanonicalFor(backend.Youdao, trimmed); ok {
		return id, nil
	}

	tag := NormalizeTag(trimmed)
	if tag == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	parsed, err := xlanguage.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}
	base, _ := parsed.Base()
	if base.String() == "zh" {
		return r.resolveChinese(parsed), nil
	}
	if id, ok := r.CanonicalFor(backend.ISO, base.String()); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
}

func (r *Registry) resolveChinese(tag xlanguage.Tag) string {
	script, _ := tag.Script()
	if script.String() == "Hant" {
		return "zh-Hant"
	}
	return "zh-Hans"
}

// IDs returns canonical ids in display order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Options lists every language for pickers, in display order.
func (r *Registry) Options() []Option {
	if r == nil {
		return nil
	}
	options := make([]Option, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		options = append(options, Option{
			Code:   rec.ID,
			Label:  rec.Title,
			Native: rec.ChineseTitle,
			Voices: rec.Voices,
		})
	}
	return options
}
