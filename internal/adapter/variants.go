package adapter

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dimensions = []string{AttrColor, AttrSize, AttrLength}

// UsedDimensions returns the dimensions declared by at least one variant.
func UsedDimensions(variants []ProductPrice) map[string]bool {
	used := make(map[string]bool, len(dimensions))
	for _, v := range variants {
		for _, attr := range v.Attributes {
			for _, dim := range dimensions {
				if attr.Name == dim {
					used[dim] = true
				}
			}
		}
	}
	return used
}

// Complete reports whether v declares every used dimension.
func Complete(v ProductPrice, used map[string]bool) bool {
	for dim, ok := range used {
		if !ok {
			continue
		}
		if !hasAttribute(v, dim) {
			return false
		}
	}
	return true
}

// FilterIncomplete drops variants missing a used dimension, unless they are in
// stock. Input order is preserved.
func FilterIncomplete(variants []ProductPrice) []ProductPrice {
	used := UsedDimensions(variants)

	kept := make([]ProductPrice, 0, len(variants))
	for _, v := range variants {
		if Complete(v, used) || v.InStock {
			kept = append(kept, v)
		}
	}
	return kept
}

func hasAttribute(v ProductPrice, name string) bool {
	for _, attr := range v.Attributes {
		if attr.Name == name {
			return true
		}
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// DollarsToCents converts a decimal dollar amount to integer cents, rounding
// half away from zero.
func DollarsToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(hundred).Round(0).IntPart()
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest. Runs of whitespace collapse to a single space.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
