// Package i18n holds the translated strings of the terminal game.
//
// Messages are looked up by key (for example "SOLVED") in gettext catalogs
// embedded from locales/<lang>/default.po. Keys without a translation are
// returned unchanged.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// DefaultLanguage is used when no language is requested
const DefaultLanguage = "en"

//go:embed locales/*/default.po
var locales embed.FS

// Catalog translates message keys for one language
type Catalog struct {
	lang string
	po   *gotext.Po
}

// Load returns the catalog for lang. Region and encoding suffixes such as
// "hu_HU.UTF-8" are ignored; an empty lang means DefaultLanguage.
func Load(lang string) (*Catalog, error) {
	lang = Normalize(lang)
	data, err := locales.ReadFile("locales/" + lang + "/default.po")
	if err != nil {
		return nil, fmt.Errorf("unsupported language %q (available: %s)", lang, strings.Join(Languages(), ", "))
	}

	po := gotext.NewPo()
	po.Parse(data)
	return &Catalog{lang: lang, po: po}, nil
}

// MustLoad is Load for the built-in languages
func MustLoad(lang string) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return c
}

// Language returns the catalog language
func (c *Catalog) Language() string {
	return c.lang
}

// T translates key. Translations with verbs are filled in from args.
func (c *Catalog) T(key string, args ...any) string {
	msg := c.po.Get(key)
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Normalize reduces a locale name like "hu_HU.UTF-8" to its language
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "_.-@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "c" || lang == "posix" {
		return DefaultLanguage
	}
	return lang
}

// Languages lists the embedded languages
func Languages() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return []string{DefaultLanguage}
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}
