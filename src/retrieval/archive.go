package retrieval

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"

	"github.com/tracerdata/cotracer/src/logger"
)

var (
	// ErrCorruptArchive is returned when the downloaded bytes are not a
	// readable zip container.
	ErrCorruptArchive = errors.New("corrupt report archive")

	// ErrUnexpectedContent is returned when the archive opened fine but
	// contained no recognizable report file, which signals an upstream
	// format change rather than an empty year.
	ErrUnexpectedContent = errors.New("archive contains no recognizable report file")
)

// The portal names report entries like "2012_ContributionData.csv". Older
// archives drop the year prefix. Anything else (readme files, export logs)
// is skipped.
var reportEntryPattern = regexp.MustCompile(`(?i)^(?:\d{4}_)?[a-z]+data\.csv$`)

// ExtractedPayload is one CSV report pulled out of an archive. The in-archive
// name is preserved because it identifies the report type.
type ExtractedPayload struct {
	Name string
	Data []byte
}

// Extract opens the archive and returns every embedded report file. Directory
// entries and files outside the report naming pattern are skipped with a log
// line. A per-entry read failure is treated as corruption since the zip
// central directory promised an entry it cannot deliver.
func Extract(arch *RawArchive) ([]ExtractedPayload, error) {
	reader, err := zip.NewReader(bytes.NewReader(arch.Body), int64(len(arch.Body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	var payloads []ExtractedPayload
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Base(entry.Name)
		if !reportEntryPattern.MatchString(name) {
			if logger.L != nil {
				logger.L.Debug("Skipping non-report archive entry", "entry", entry.Name, "url", arch.URL)
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening entry %s: %v", ErrCorruptArchive, entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading entry %s: %v", ErrCorruptArchive, entry.Name, err)
		}

		payloads = append(payloads, ExtractedPayload{Name: name, Data: data})
	}

	if len(payloads) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedContent, arch.URL)
	}
	return payloads, nil
}
