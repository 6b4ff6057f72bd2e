package output

import "testing"

func TestNewStatReportWriter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
	}{
		{name: "Console", format: FormatConsole},
		{name: "File", format: FormatFile},
		{name: "JSON", format: FormatJSON},
		{name: "Markdown", format: FormatMarkdown},
		{name: "Unknown defaults to Console", format: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewStatReportWriter(tt.format)
			var ok bool
			switch tt.format {
			case FormatFile:
				_, ok = writer.(*TSVStatWriter)
			case FormatJSON:
				_, ok = writer.(*JSONStatWriter)
			case FormatMarkdown:
				_, ok = writer.(*MarkdownStatWriter)
			default:
				_, ok = writer.(*ConsoleStatWriter)
			}
			if !ok {
				t.Errorf("NewStatReportWriter(%q) = %T", tt.format, writer)
			}
		})
	}
}

func TestNewFinalLinesReportWriter(t *testing.T) {
	tests := []struct {
		format   OutputFormat
		expected string
	}{
		{FormatConsole, "*output.ConsoleFinalLinesWriter"},
		{FormatFile, "*output.TSVFinalLinesWriter"},
		{FormatJSON, "*output.JSONFinalLinesWriter"},
		{FormatMarkdown, "*output.MarkdownFinalLinesWriter"},
	}
	for _, tt := range tests {
		writer := NewFinalLinesReportWriter(tt.format)
		if got := typeName(writer); got != tt.expected {
			t.Errorf("NewFinalLinesReportWriter(%q) = %s, expected %s", tt.format, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected OutputFormat
		wantErr  bool
	}{
		{"console", FormatConsole, false},
		{"FILE", FormatFile, false},
		{"json", FormatJSON, false},
		{"markdown", FormatMarkdown, false},
		{"", FormatConsole, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, %v, expected %q (err %v)", tt.in, got, err, tt.expected, tt.wantErr)
		}
	}
}
