package highlight

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

// Theme selects the chroma style; ThemeAuto follows the desktop setting.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts the names above in any case; empty means auto.
func ParseTheme(raw string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return ThemeAuto, nil
	case ThemeAuto, ThemeLight, ThemeDark:
		return t, nil
	default:
		return ThemeAuto, fmt.Errorf("unknown theme %q", raw)
	}
}

var detectDarkMode = darkmode.IsDarkMode

func (t Theme) dark() bool {
	switch t {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	}
	if detectDarkMode == nil {
		return false
	}
	dark, err := detectDarkMode()
	if err != nil {
		slog.Debug("detect dark-mode", slog.Any("error", err))
		return false
	}
	return dark
}

func (t Theme) style() *chroma.Style {
	name := "github"
	if t.dark() {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}
