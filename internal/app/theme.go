package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// ViewerTheme darkens the backdrop behind the image overlay so photos are
// shown against a neutral surround.
type ViewerTheme struct{}

var _ fyne.Theme = (*ViewerTheme)(nil)

// ColorNameViewerBackground is the fill behind the image inside the viewer.
const ColorNameViewerBackground fyne.ThemeColorName = "viewerBackground"

func (t *ViewerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x15, G: 0x65, B: 0xC0, A: 0xFF}
	case theme.ColorNameShadow:
		return color.NRGBA{A: 0xC0} // Modal backdrop
	case ColorNameViewerBackground:
		return color.NRGBA{R: 0x12, G: 0x12, B: 0x14, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *ViewerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ViewerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ViewerTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
