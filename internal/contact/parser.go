package contact

import (
	"io"
	"log/slog"
	"strings"
)

// synonyms maps each required logical field to the header spellings that
// select it. A header cell matches a field when it contains any synonym as
// a case-insensitive substring, so "HR Email Address" still selects email.
var synonyms = map[string][]string{
	"name":    {"name", "hr_name", "hr name", "contact_name", "contact name", "person", "recruiter"},
	"email":   {"email", "email_address", "email address", "contact_email", "contact email", "hr_email", "hr email"},
	"company": {"company", "company_name", "company name", "organization", "org", "firm"},
}

// requiredFields fixes the match order so MissingColumns output is stable.
var requiredFields = []string{"name", "email", "company"}

// Parser ingests loosely structured tabular contact data.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger discards row warnings.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{logger: logger.With("component", "ingest")}
}

// Parse turns raw tabular text into a validated contact set. Malformed
// rows are skipped with a warning; only structural problems (no usable
// header, nothing left after filtering) fail with *IngestionError.
func (p *Parser) Parse(raw string) (Set, error) {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}

	if len(lines) < 2 {
		return nil, &IngestionError{Reason: ReasonTooFewRows}
	}

	headers := splitLine(lines[0])
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	indices := make(map[string]int, len(requiredFields))
	var missing []string
	for _, field := range requiredFields {
		idx := findColumn(headers, synonyms[field])
		if idx < 0 {
			missing = append(missing, field)
			continue
		}
		indices[field] = idx
	}
	if len(missing) > 0 {
		return nil, &IngestionError{Reason: ReasonMissingColumns, Missing: missing, Found: headers}
	}

	// A row must reach the right-most required column to be usable.
	minCells := 0
	for _, idx := range indices {
		if idx+1 > minCells {
			minCells = idx + 1
		}
	}

	var set Set
	for i, line := range lines[1:] {
		row := i + 2 // 1-based, counting the header
		cells := splitLine(line)
		if len(cells) < minCells {
			p.logger.Warn("skipping row with too few cells", "row", row, "cells", len(cells), "need", minCells)
			continue
		}

		c := Contact{
			Name:    Sanitize(cells[indices["name"]]),
			Email:   Sanitize(cells[indices["email"]]),
			Company: Sanitize(cells[indices["company"]]),
		}

		if c.Name == "" || c.Email == "" || c.Company == "" {
			p.logger.Warn("skipping row with missing fields", "row", row,
				"name", c.Name, "email", c.Email, "company", c.Company)
			continue
		}
		if !ValidEmail(c.Email) {
			p.logger.Warn("skipping row with invalid email", "row", row, "email", c.Email)
			continue
		}

		set = append(set, c)
	}

	if len(set) == 0 {
		return nil, &IngestionError{Reason: ReasonEmptyResult, Found: headers}
	}

	p.logger.Info("parsed contacts", "total", len(set), "rows", len(lines)-1)
	return set, nil
}

// splitLine splits one line on commas, honoring quoted segments: a quote
// character toggles quoted mode, and commas inside quotes are literal.
// Quote characters themselves are not kept in the value.
func splitLine(line string) []string {
	var cells []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch ch := line[i]; {
		case ch == '"':
			// A doubled quote inside a quoted segment is a literal quote.
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			cells = append(cells, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	cells = append(cells, cur.String())
	return cells
}

func findColumn(headers []string, variants []string) int {
	for i, h := range headers {
		for _, v := range variants {
			if strings.Contains(h, v) {
				return i
			}
		}
	}
	return -1
}
