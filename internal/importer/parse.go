package importer

import "strings"

// fieldDelimiter separates columns in the Orange Book text extracts.
const fieldDelimiter = "~"

// rawRow is one validated data line: its 1-based line number in the source
// text and its fields, exactly the expected count.
type rawRow struct {
	Line   int
	Fields []string
}

// parseRows splits feed content into validated rows. The first non-empty
// line is the header and is always discarded, whatever it contains. A line
// with the wrong column count is dropped and counted on the result; it never
// aborts the run. Blank lines are ignored entirely.
func parseRows(content string, expectedCols int, res *Result) []rawRow {
	lines := strings.Split(content, "\n")

	var rows []rawRow
	headerSeen := false

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := strings.Split(line, fieldDelimiter)
		if len(fields) != expectedCols {
			res.Malformed++
			continue
		}

		rows = append(rows, rawRow{Line: i + 1, Fields: fields})
	}

	return rows
}
