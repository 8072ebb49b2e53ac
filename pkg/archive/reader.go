package archive

import (
	"bufio"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
)

// RecordType distinguishes the two line grammars of the log format
type RecordType int

const (
	RecordText RecordType = iota
	RecordImage
)

// Record is one parsed log line. For RecordImage, Content holds the image
// path relative to the channel directory.
type Record struct {
	Type      RecordType
	Timestamp string
	Author    string
	Content   string
}

// FormatTextLine renders a message content line, newline included
func FormatTextLine(timestamp, author, content string) string {
	return fmt.Sprintf("[%s] %s: %s\n", timestamp, author, content)
}

// FormatImageLine renders a shared-image line, newline included
func FormatImageLine(timestamp, author, relPath string) string {
	return fmt.Sprintf("[%s] %s shared an image: %s\n", timestamp, author, relPath)
}

// The image pattern must be tried first: an image line also matches the
// general message pattern.
var (
	imageLinePattern = regexp.MustCompile(`^\[(.*?)\] (.*?) shared an image: (.*)$`)
	textLinePattern  = regexp.MustCompile(`^\[(.*?)\] (.*?): (.*)$`)
)

// ParseLine parses one log line. Unparseable lines return ok==false and are
// skipped by readers, matching the tolerant behavior of the viewer.
func ParseLine(line string) (Record, bool) {
	if m := imageLinePattern.FindStringSubmatch(line); m != nil {
		return Record{Type: RecordImage, Timestamp: m[1], Author: m[2], Content: m[3]}, true
	}
	if m := textLinePattern.FindStringSubmatch(line); m != nil {
		return Record{Type: RecordText, Timestamp: m[1], Author: m[2], Content: m[3]}, true
	}
	return Record{}, false
}

// ReadLog parses a channel's message log into records, preserving line
// order. The log is streamed line by line, never loaded whole.
func ReadLog(fs afero.Fs, path string) ([]Record, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if rec, ok := ParseLine(scanner.Text()); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	return records, nil
}
