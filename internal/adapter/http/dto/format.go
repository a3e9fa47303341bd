package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// CardTitleLimit is the longest account name shown on a card before it
	// is truncated.
	CardTitleLimit = 20

	// DisplayTimeLayout renders timestamps as "Jan 02, 2006 @ 03:04 PM MST".
	DisplayTimeLayout = "Jan 02, 2006 @ 03:04 PM MST"

	// MemberSinceLayout renders the sign-up date of a user.
	MemberSinceLayout = "January 2, 2006"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars with thousands separators,
// e.g. -1234.5 becomes "-$1,234.50".
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).StringFixed(2)[1:] // ".xx"

	return sign + "$" + printer.Sprintf("%d", whole.IntPart()) + cents
}

// MaskLastFour renders the last four card digits as "xx1234".
func MaskLastFour(lastFour string) string {
	if lastFour == "" {
		return ""
	}
	return "xx" + lastFour
}

// AccountDisplayName renders "Checking ( ... 1234)", or the bare name when
// no digits are stored.
func AccountDisplayName(name, lastFour string) string {
	if lastFour == "" {
		return name
	}
	return name + " ( ... " + lastFour + ")"
}

// CardTitle truncates long account names to CardTitleLimit characters
// followed by an ellipsis.
func CardTitle(name string) string {
	runes := []rune(name)
	if len(runes) <= CardTitleLimit {
		return name
	}
	return strings.TrimRight(string(runes[:CardTitleLimit]), " ") + "..."
}

// FormatInZone renders t with layout in loc. A nil loc means UTC.
func FormatInZone(t time.Time, layout string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(layout)
}
