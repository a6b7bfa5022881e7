package workbook

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// isDateFormat reports whether the cell's number format renders a date or time.
func isDateFormat(f *excelize.File, sheet, cell string) bool {
	idx, err := f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}

	style, err := f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}

	if style.CustomNumFmt != nil {
		return isDatePattern(*style.CustomNumFmt)
	}

	return isBuiltInDateFormat(style.NumFmt)
}

// built-in number formats 14-22 and 45-47 are dates and times
func isBuiltInDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDatePattern looks for date/time tokens outside quoted literals, escapes and
// bracketed colour or locale sections.
func isDatePattern(pattern string) bool {
	var b strings.Builder

	quoted := false
	bracket := false
	escaped := false

	for _, r := range strings.ToLower(pattern) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			if r == ']' {
				bracket = false
			} else if r == 'h' || r == 'm' || r == 's' {
				// elapsed time e.g. [h]:mm
				b.WriteRune(r)
			}
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		default:
			b.WriteRune(r)
		}
	}

	return strings.ContainsAny(b.String(), "ydhs")
}
