package contact

import (
	"fmt"
	"regexp"
	"strings"
)

// Contact is a single validated recipient parsed from one tabular row.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// Set is an ordered collection of contacts. Order matches the source rows.
type Set []Contact

// emailPattern is the loose local@domain.tld shape check. It deliberately
// accepts anything without spaces around a single @ followed by a dotted
// domain; strict RFC 5322 validation rejects too many real addresses.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s has the accepted address shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// invisible space variants that show up in data exported from spreadsheets
// and web pages. All are replaced with a plain space before further cleanup.
var invisibleSpaces = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u2002", " ", // en space
	"\u2003", " ", // em space
	"\u2004", " ",
	"\u2005", " ",
	"\u2006", " ",
	"\u2007", " ",
	"\u2008", " ",
	"\u2009", " ", // thin space
	"\u200a", " ",
	"\u200b", " ", // zero-width space
	"\u2060", " ", // word joiner
	"\ufeff", " ", // byte order mark
)

// Sanitize normalizes a raw field value: invisible space variants become
// spaces, anything outside printable ASCII is dropped, runs of whitespace
// collapse to one space, and the result is trimmed.
func Sanitize(s string) string {
	s = invisibleSpaces.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// DuplicateEmails returns the number of contacts whose email address
// appeared earlier in the set. Duplicates are kept as distinct recipients;
// this count exists so callers can warn about them.
func (s Set) DuplicateEmails() int {
	seen := make(map[string]bool, len(s))
	dup := 0
	for _, c := range s {
		key := strings.ToLower(c.Email)
		if seen[key] {
			dup++
		}
		seen[key] = true
	}
	return dup
}

// IngestionReason classifies why ingestion failed.
type IngestionReason string

const (
	ReasonTooFewRows     IngestionReason = "too_few_rows"
	ReasonMissingColumns IngestionReason = "missing_columns"
	ReasonEmptyResult    IngestionReason = "empty_result"
)

// IngestionError is a terminal parse failure. Individual bad rows are
// skipped with a warning and never produce one of these.
type IngestionError struct {
	Reason  IngestionReason
	Missing []string // required logical fields with no matching header
	Found   []string // header cells actually present
}

func (e *IngestionError) Error() string {
	switch e.Reason {
	case ReasonTooFewRows:
		return "contact data must have at least a header row and one data row"
	case ReasonMissingColumns:
		return fmt.Sprintf("missing required columns: %s (found: %s)",
			strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
	case ReasonEmptyResult:
		return fmt.Sprintf("no valid contacts found (headers: %s)",
			strings.Join(e.Found, ", "))
	default:
		return "contact ingestion failed"
	}
}
