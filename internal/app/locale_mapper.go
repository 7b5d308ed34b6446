package app

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

// LocaleMapper derives the public relative URL of a stored asset from the
// locale folder it lives in.
type LocaleMapper struct {
	defaultLanguage string
	prefixes        map[string]string // locale code -> relative_url_prefix
}

// NewLocaleMapper creates a mapper from a compiled store
func NewLocaleMapper(store domain.CompiledStore) *LocaleMapper {
	lang := store.DefaultLanguage
	if lang == "" {
		lang = "en"
	}
	return &LocaleMapper{
		defaultLanguage: lang,
		prefixes:        store.LocalePrefixes,
	}
}

// PublicURL maps relPath (the path below the locale folder) to its public
// URL. The last component of folderPath is the locale code, e.g.
// "_contents/es-es".
func (m *LocaleMapper) PublicURL(folderPath, relPath string) string {
	return m.LocaleURL(localeFromFolder(folderPath), relPath)
}

// LocaleURL maps relPath below the folder of locale code to its public URL
func (m *LocaleMapper) LocaleURL(code, relPath string) string {
	return path.Join("/", m.Prefix(code), filepath.ToSlash(relPath))
}

// Prefix returns the URL segment injected for a locale code. The default
// language maps to the empty prefix.
func (m *LocaleMapper) Prefix(code string) string {
	code = strings.ToLower(code)
	if p, ok := m.prefixes[code]; ok {
		return strings.Trim(p, "/")
	}

	lang := code
	if i := strings.Index(code, "-"); i >= 0 {
		lang = code[:i]
	}
	if lang == "" || lang == m.defaultLanguage {
		return ""
	}
	return lang
}

// localeFromFolder returns the last component of folder
func localeFromFolder(folder string) string {
	parts := strings.FieldsFunc(filepath.ToSlash(folder), func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
