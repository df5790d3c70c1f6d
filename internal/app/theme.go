package app

import (
	"image/color"

	"region-mapper/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RegionTheme tints the default theme with the region overlay colors.
type RegionTheme struct{}

var _ fyne.Theme = (*RegionTheme)(nil)

func (t *RegionTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.BoxSelect
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.BoxSelect, 0x40)
	case theme.ColorNameError:
		return colorutil.Selection
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *RegionTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *RegionTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *RegionTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameScrollBar {
		return 14 // easier to grab next to the canvas
	}
	return theme.DefaultTheme().Size(name)
}
