package dictionary

import "strings"

// DefaultSearchLimit caps Search results when limit <= 0.
const DefaultSearchLimit = 10

// Search returns records whose script form contains query, or whose pinyin
// or any translation contains it case-insensitively.
func Search(records []Record, query string, limit int) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var out []Record
	for _, r := range records {
		if len(out) >= limit {
			break
		}
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, q string) bool {
	if strings.Contains(r.ScriptForm, q) || strings.Contains(strings.ToLower(r.PhoneticForm), q) {
		return true
	}
	for _, t := range r.Translations {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
