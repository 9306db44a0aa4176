package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatHTML   Format = "html"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

var Formats = []Format{FormatCSV, FormatHTML, FormatJSON, FormatSQLite}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q, expected one of %v", s, Formats)
}

func (f Format) Extension() string {
	if f == FormatSQLite {
		return "db"
	}
	return string(f)
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// DefaultFileName is `linkedin_<keyword>_<yyyymmdd_hhmmss>.<ext>`.
func DefaultFileName(keyword string, f Format, now time.Time) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(keyword), "_"), "_")
	if slug == "" {
		slug = "search"
	}
	return fmt.Sprintf("linkedin_%s_%s.%s", slug, now.Format("20060102_150405"), f.Extension())
}

// Write exports people to path in the given format, creating parent
// directories as needed.
func Write(ctx context.Context, f Format, path string, people []person.Person, columns []Column, title string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if f == FormatSQLite {
		return WriteSQLite(ctx, path, people, columns)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	switch f {
	case FormatCSV:
		err = WriteCSV(file, people, columns)
	case FormatHTML:
		err = WriteHTML(file, people, columns, title)
	case FormatJSON:
		err = WriteJSON(file, people, columns)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	closeErr := file.Close()
	if err != nil {
		return err
	}
	return closeErr
}
