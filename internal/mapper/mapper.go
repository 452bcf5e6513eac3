package mapper

import (
	"unicode"
	"unicode/utf8"
)

// Storage columns are PascalCase, the wire format is camelCase. The only key
// the first-rune flip cannot handle is the primary key column "ID", which maps
// to "id" and back exactly.

// ToDomain converts storage rows to wire objects.
func ToDomain(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		converted := make(map[string]any, len(row))
		for key, value := range row {
			converted[toCamel(key)] = value
		}
		out[i] = converted
	}
	return out
}

// ToStorage converts wire objects to storage rows.
func ToStorage(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		converted := make(map[string]any, len(row))
		for key, value := range row {
			converted[toPascal(key)] = value
		}
		out[i] = converted
	}
	return out
}

func toCamel(key string) string {
	if key == "ID" {
		return "id"
	}
	return flipFirst(key, unicode.ToLower)
}

func toPascal(key string) string {
	if key == "id" {
		return "ID"
	}
	return flipFirst(key, unicode.ToUpper)
}

func flipFirst(s string, flip func(rune) rune) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(flip(r)) + s[size:]
}
