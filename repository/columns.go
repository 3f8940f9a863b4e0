package repository

import "strings"

// prefixedUserColumns qualifies the user column list with a table alias for
// join queries.
func prefixedUserColumns(alias string) string {
	return prefixColumns(userColumns, alias)
}

// prefixedTrackColumns qualifies the track column list with a table alias.
func prefixedTrackColumns(alias string) string {
	return prefixColumns(trackColumns, alias)
}

func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
