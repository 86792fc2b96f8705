// Package export renders quotations as PDF and XLSX documents.
package export

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

// NoCategory is the group heading for lines without a category.
const NoCategory = "NO CATEGORY ASSIGNED"

// OrderLines returns a copy of lines in presentation order: by category with
// uncategorized lines last, then by item number, falling back to the name.
// Amounts are untouched.
func OrderLines(lines []models.QuotationLine) []models.QuotationLine {
	ordered := make([]models.QuotationLine, len(lines))
	copy(ordered, lines)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Category == "" || b.Category == "" {
			if a.Category != b.Category {
				return b.Category == ""
			}
		} else if c := compareFold(a.Category, b.Category); c != 0 {
			return c < 0
		}
		return compareFold(sortKey(a), sortKey(b)) < 0
	})
	return ordered
}

// Group is a run of lines sharing one category heading.
type Group struct {
	Heading string
	Lines   []models.QuotationLine
}

// GroupLines orders the lines and splits them by category.
func GroupLines(lines []models.QuotationLine) []Group {
	var groups []Group
	for _, line := range OrderLines(lines) {
		heading := strings.ToUpper(strings.TrimSpace(line.Category))
		if heading == "" {
			heading = NoCategory
		}
		if len(groups) == 0 || groups[len(groups)-1].Heading != heading {
			groups = append(groups, Group{Heading: heading})
		}
		groups[len(groups)-1].Lines = append(groups[len(groups)-1].Lines, line)
	}
	return groups
}

func sortKey(line models.QuotationLine) string {
	if line.ItemNo != "" {
		return line.ItemNo
	}
	return line.Name
}

func compareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// FormatMoney renders an amount with thousands separators and two decimals,
// prefixed by the currency code.
func FormatMoney(currency string, amount decimal.Decimal) string {
	raw := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}

	intPart, decPart, _ := strings.Cut(raw, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String() + "." + decPart
	if currency != "" {
		out = currency + " " + out
	}
	return out
}
