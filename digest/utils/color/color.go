// Package color styles CLI output. Colors are dropped when stdout is not a
// terminal or NO_COLOR is set.
package color

import (
	"github.com/fatih/color"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	infoColor  = color.New(color.FgGreen)
	faintColor = color.New(color.Faint)
	errorColor = color.New(color.FgRed, color.Bold)
)

func ColorTitle(s string) string {
	return titleColor.Sprint(s)
}

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorFaint(s string) string {
	return faintColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}
