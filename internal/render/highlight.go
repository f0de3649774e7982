package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// LanguageOf returns the Chroma lexer name for a source path.
func LanguageOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cs", ".csx":
		return "csharp"
	case ".vb":
		return "vb.net"
	case ".fs", ".fsx", ".fsi":
		return "fsharp"
	case ".diff", ".patch":
		return "diff"
	}
	return ""
}

// Highlight returns text colored for a true-color terminal with the given
// Chroma language and theme. Unknown languages come back unchanged.
func Highlight(text, language, theme string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Palette holds the panel colors taken from a Chroma theme.
type Palette struct {
	Fg     string
	Border string // 30% fg→bg
	Accent string // most saturated token color
	Error  string
}

// ThemePalette derives panel colors from a Chroma theme name. The same theme
// always yields the same palette.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return Palette{Fg: "#c8c8c8", Border: "#5a5a5a", Accent: "#00dfff", Error: "#d75f5f"}
	}
	entry := sty.Get(chroma.Background)
	bg, fg := "#000000", "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}
	p := Palette{
		Fg:     fg,
		Border: lerpHex(fg, bg, 0.30),
		Accent: pickAccent(sty, fg),
		Error:  fg,
	}
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		p.Error = e.Colour.String()
	}
	return p
}

func pickAccent(sty *chroma.Style, fallback string) string {
	best, bestSat := fallback, 0.0
	for _, tt := range []chroma.TokenType{
		chroma.Keyword, chroma.KeywordType, chroma.NameClass, chroma.NameFunction,
		chroma.LiteralString, chroma.LiteralNumber, chroma.Comment,
	} {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b := hexToRGB(hex)
		mx := max(r, g, b)
		if mx == 0 {
			continue
		}
		if sat := (mx - min(r, g, b)) / mx; sat > bestSat {
			best, bestSat = hex, sat
		}
	}
	return best
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexToRGB(a)
	br, bg, bb := hexToRGB(b)
	return fmt.Sprintf("#%02x%02x%02x",
		clampByte(ar+(br-ar)*t),
		clampByte(ag+(bg-ag)*t),
		clampByte(ab+(bb-ab)*t),
	)
}

func hexToRGB(hex string) (float64, float64, float64) {
	var r, g, b int
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return float64(r), float64(g), float64(b)
}

func clampByte(v float64) int {
	return int(min(max(v, 0), 255) + 0.5)
}
