package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder resolves a WHATWG encoding label ("utf-8", "windows-1252",
// "iso-8859-1", ...). A leading byte order mark is always honored and stripped.
func Decoder(label string) (transform.Transformer, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(label)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

func readCSV(path, label string) ([][]string, error) {
	dec, err := Decoder(label)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	return decodeCSV(transform.NewReader(f, dec))
}

func decodeCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing csv: %w", err)
	}
	return records, nil
}
