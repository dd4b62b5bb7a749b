package importer

import (
	"strings"
	"testing"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantRows      int
		wantMalformed int
	}{
		{
			name:          "header only",
			content:       "a~b~c\n",
			wantRows:      0,
			wantMalformed: 0,
		},
		{
			name:          "header discarded regardless of content",
			content:       "1~2~3\nx~y~z\n",
			wantRows:      1,
			wantMalformed: 0,
		},
		{
			name:          "valid rows",
			content:       "h1~h2~h3\na~b~c\nd~e~f\n",
			wantRows:      2,
			wantMalformed: 0,
		},
		{
			name:          "short row dropped and counted",
			content:       "h1~h2~h3\na~b~c\nd~e\nf~g~h\n",
			wantRows:      2,
			wantMalformed: 1,
		},
		{
			name:          "long row dropped and counted",
			content:       "h1~h2~h3\na~b~c~d\n",
			wantRows:      0,
			wantMalformed: 1,
		},
		{
			name:          "trailing newlines not counted",
			content:       "h1~h2~h3\na~b~c\n\n\n",
			wantRows:      1,
			wantMalformed: 0,
		},
		{
			name:          "blank line between rows ignored",
			content:       "h1~h2~h3\na~b~c\n\nd~e~f\n",
			wantRows:      2,
			wantMalformed: 0,
		},
		{
			name:          "crlf line endings",
			content:       "h1~h2~h3\r\na~b~c\r\n",
			wantRows:      1,
			wantMalformed: 0,
		},
		{
			name:          "leading blank lines before header",
			content:       "\n\nh1~h2~h3\na~b~c\n",
			wantRows:      1,
			wantMalformed: 0,
		},
		{
			name:          "empty content",
			content:       "",
			wantRows:      0,
			wantMalformed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResult()
			rows := parseRows(tt.content, 3, res)

			if len(rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(rows), tt.wantRows)
			}
			if res.Malformed != tt.wantMalformed {
				t.Errorf("Malformed = %d, want %d", res.Malformed, tt.wantMalformed)
			}
		})
	}
}

// Every non-header, non-blank line is either returned or counted malformed.
func TestParseRows_Accounting(t *testing.T) {
	content := "h~h~h\na~b~c\nbad\nd~e~f\nx~y\ng~h~i\n"
	res := NewResult()
	rows := parseRows(content, 3, res)

	nonHeaderLines := 0
	for i, line := range strings.Split(content, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		nonHeaderLines++
	}

	if got := len(rows) + res.Malformed; got != nonHeaderLines {
		t.Errorf("rows + malformed = %d, want %d", got, nonHeaderLines)
	}
}

func TestParseRows_PreservesOrderAndLineNumbers(t *testing.T) {
	content := "h~h~h\na~b~c\n\nd~e~f\n"
	res := NewResult()
	rows := parseRows(content, 3, res)

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Fields[0] != "a" || rows[1].Fields[0] != "d" {
		t.Errorf("row order not preserved: %v", rows)
	}
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Errorf("line numbers = %d, %d, want 2, 4", rows[0].Line, rows[1].Line)
	}
}
