package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput is a MessageOutput that writes each exchange to
// `<dir>/<id>.txt` (headers) and `<dir>/<id>.json` (raw body), the json
// files can be fed back into `linkedin-scraper parse`.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, message string, body []byte) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(message), 0o600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
	err = os.WriteFile(filepath.Join(o.directory, id+".json"), body, 0o600)
	if err != nil {
		slog.Warn("failed to write message body file", "id", id, "err", err)
	}
}
