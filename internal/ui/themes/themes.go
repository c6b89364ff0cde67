package themes

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Brand colors shared by custom widgets.
var (
	Accent    = color.NRGBA{R: 0xE8, G: 0x79, B: 0xF9, A: 0xFF}
	Secondary = color.NRGBA{R: 0x22, G: 0xD3, B: 0xEE, A: 0xFF}
	Surface   = color.NRGBA{R: 0x0A, G: 0x0A, B: 0x0B, A: 0xF0}
)

type SonicTheme struct {
	variant string
}

var _ fyne.Theme = (*SonicTheme)(nil)

func NewTheme(variant string) fyne.Theme {
	return &SonicTheme{variant: variant}
}

func (t *SonicTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.variant == "light" {
		return t.colorLight(name, variant)
	}
	return t.colorDark(name, variant)
}

func (t *SonicTheme) colorDark(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	colors := map[fyne.ThemeColorName]color.NRGBA{
		theme.ColorNameBackground:        {R: 0x05, G: 0x05, B: 0x05, A: 255},
		theme.ColorNameButton:            {R: 0x18, G: 0x18, B: 0x1B, A: 255},
		theme.ColorNameDisabledButton:    {R: 0x12, G: 0x12, B: 0x14, A: 255},
		theme.ColorNameDisabled:          {R: 0x52, G: 0x52, B: 0x5B, A: 255},
		theme.ColorNameError:             {R: 0xF8, G: 0x71, B: 0x71, A: 255},
		theme.ColorNameFocus:             Secondary,
		theme.ColorNameForeground:        {R: 0xF4, G: 0xF4, B: 0xF5, A: 255},
		theme.ColorNameHover:             {R: 0x27, G: 0x27, B: 0x2A, A: 255},
		theme.ColorNameInputBackground:   {R: 0x0A, G: 0x0A, B: 0x0B, A: 255},
		theme.ColorNameInputBorder:       {R: 0x27, G: 0x27, B: 0x2A, A: 255},
		theme.ColorNameMenuBackground:    {R: 0x0A, G: 0x0A, B: 0x0B, A: 255},
		theme.ColorNameOverlayBackground: {R: 0x0A, G: 0x0A, B: 0x0B, A: 240},
		theme.ColorNamePressed:           {R: 0x3F, G: 0x3F, B: 0x46, A: 255},
		theme.ColorNamePrimary:           Accent,
		theme.ColorNameScrollBar:         {R: 0x3F, G: 0x3F, B: 0x46, A: 255},
		theme.ColorNameSelection:         {R: 0xE8, G: 0x79, B: 0xF9, A: 70},
		theme.ColorNameShadow:            {R: 0, G: 0, B: 0, A: 170},
		theme.ColorNameSuccess:           {R: 0x4A, G: 0xDE, B: 0x80, A: 255},
		theme.ColorNameWarning:           {R: 0xFB, G: 0xBF, B: 0x24, A: 255},
		theme.ColorNameHyperlink:         Secondary,
		theme.ColorNamePlaceHolder:       {R: 0x71, G: 0x71, B: 0x7A, A: 255},
		theme.ColorNameSeparator:         {R: 0x1F, G: 0x1F, B: 0x23, A: 255},
	}

	if c, exists := colors[name]; exists {
		return c
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (t *SonicTheme) colorLight(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	colors := map[fyne.ThemeColorName]color.NRGBA{
		theme.ColorNameBackground:      {R: 250, G: 250, B: 250, A: 255},
		theme.ColorNameButton:          {R: 255, G: 255, B: 255, A: 255},
		theme.ColorNameForeground:      {R: 24, G: 24, B: 27, A: 255},
		theme.ColorNameInputBackground: {R: 255, G: 255, B: 255, A: 255},
		theme.ColorNamePrimary:         {R: 0xC0, G: 0x26, B: 0xD3, A: 255},
		theme.ColorNameFocus:           {R: 0x08, G: 0x91, B: 0xB2, A: 255},
		theme.ColorNameSelection:       {R: 0xC0, G: 0x26, B: 0xD3, A: 50},
		theme.ColorNameShadow:          {R: 0, G: 0, B: 0, A: 60},
		theme.ColorNameSeparator:       {R: 228, G: 228, B: 231, A: 255},
	}

	if c, exists := colors[name]; exists {
		return c
	}
	return theme.DefaultTheme().Color(name, theme.VariantLight)
}

func (t *SonicTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *SonicTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *SonicTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 6
	case theme.SizeNameText:
		return 13
	case theme.SizeNameCaptionText:
		return 11
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameSeparatorThickness, theme.SizeNameInputBorder:
		return 1
	default:
		return theme.DefaultTheme().Size(name)
	}
}
