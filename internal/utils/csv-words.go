package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadCsvFile loads a word list. The first column holds the word, any other
// columns are ignored, and an optional "word" header row is skipped.
func ReadCsvFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read word file %s: %w", filePath, err)
	}
	defer f.Close()

	return ReadCsvWords(f)
}

func ReadCsvWords(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	var words []string
	for line := 1; ; line++ {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse word csv: %w", err)
		}

		if len(record) == 0 {
			continue
		}
		word := strings.TrimSpace(record[0])
		if word == "" {
			log.Debug().Int("line", line).Msg("skipping empty word record")
			continue
		}
		if line == 1 && strings.EqualFold(word, "word") {
			continue
		}
		words = append(words, word)
	}

	if len(words) == 0 {
		return nil, errors.New("word csv contains no words")
	}
	return words, nil
}
