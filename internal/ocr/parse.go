package ocr

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	moneyRe = regexp.MustCompile(`\b(\d{1,3}(?:,?\d{3})*\.\d{2})\b`)

	// priorityKeywords mark the receipt lines most likely to hold the paid total
	priorityKeywords = []string{"pago total", "total a pagar", "monto", "total"}
)

// FindAmount looks for the expected amount in receipt text. Amounts on total
// lines are checked first. Without a match the largest amount found is returned.
// ok is false when the text holds no amount at all.
func FindAmount(text string, expected decimal.Decimal) (decimal.Decimal, bool) {
	if strings.TrimSpace(text) == "" {
		return decimal.Zero, false
	}

	var priority []decimal.Decimal
	for _, line := range strings.Split(strings.ToLower(text), "\n") {
		for _, kw := range priorityKeywords {
			if !strings.Contains(line, kw) {
				continue
			}
			if m := moneyRe.FindStringSubmatch(line); m != nil {
				if d, err := parseMoney(m[1]); err == nil {
					priority = append(priority, d)
				}
			}
			break
		}
	}
	for _, d := range priority {
		if d.Equal(expected) {
			return d, true
		}
	}

	var all []decimal.Decimal
	for _, m := range moneyRe.FindAllStringSubmatch(text, -1) {
		if d, err := parseMoney(m[1]); err == nil {
			all = append(all, d)
		}
	}
	if len(all) == 0 {
		return decimal.Zero, false
	}

	max := all[0]
	for _, d := range all {
		if d.Equal(expected) {
			return d, true
		}
		if d.GreaterThan(max) {
			max = d
		}
	}
	return max, true
}

// FindName reports whether any keyword appears as a whole word, ignoring case
func FindName(text string, keywords []string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// IdentifyBank returns the first bank, in name order, whose keywords appear in the text
func IdentifyBank(text string, banks map[string][]string) string {
	lower := strings.ToLower(text)
	if lower == "" {
		return ""
	}

	names := make([]string, 0, len(banks))
	for name := range banks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, kw := range banks[name] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(lower, kw) {
				return name
			}
		}
	}
	return ""
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
