package preview

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/eyetrace/preview/internal/log"
)

// fileTemplate is the single source of truth for the on-disk name
// format. Both the encoder and the decoder pattern are derived from
// this one string; there is no second, hand-written copy to drift.
const fileTemplate = "eye%d_frame%d_confidence%05.4f.%s"

// verbPattern matches one fmt verb inside fileTemplate.
var verbPattern = regexp.MustCompile(`%[0-9.]*[a-z]`)

// fieldPattern captures one encoded field: a number (optionally with a
// fractional part) or a lower-case word.
const fieldPattern = `([0-9]+(?:\.[0-9]+)?|[a-z]+)`

// namePattern is the full-match decoder, built by substituting a
// capture group for every verb in fileTemplate.
var namePattern = func() *regexp.Regexp {
	literals := verbPattern.Split(fileTemplate, -1)
	for i, lit := range literals {
		literals[i] = regexp.QuoteMeta(lit)
	}
	return regexp.MustCompile("^" + strings.Join(literals, fieldPattern) + "$")
}()

// ErrNoMatch is returned by ParseFileName for names that do not follow
// the record template.
var ErrNoMatch = errors.New("preview: file name does not match the record template")

// FileName encodes the record into its deterministic file name.
func (r Record) FileName() string {
	return fmt.Sprintf(fileTemplate, r.Eye, r.Frame, r.Confidence, r.Format)
}

// ParseFileName decodes a file name back into a Record. Foreign names
// yield ErrNoMatch; a matching name with an unsupported extension
// yields an UnknownFormatError naming it.
func ParseFileName(name string) (Record, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Record{}, ErrNoMatch
	}

	eye, err := strconv.Atoi(m[1])
	if err != nil {
		return Record{}, ErrNoMatch
	}
	frame, err := strconv.Atoi(m[2])
	if err != nil {
		return Record{}, ErrNoMatch
	}
	confidence, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Record{}, ErrNoMatch
	}
	format, err := FormatFromExtension(m[4])
	if err != nil {
		return Record{}, err
	}

	return Record{
		Eye:        eye,
		Frame:      frame,
		Confidence: confidence,
		Format:     format,
	}, nil
}

// DecodeAll parses every matching file name in dir. Reconstruction is
// best effort: foreign files are ignored, matching names with an
// unsupported extension are skipped with a warning.
func DecodeAll(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("preview: scanning %q: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		record, err := ParseFileName(entry.Name())
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			log.Warn("skipping unreadable preview file", "name", entry.Name(), "err", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
