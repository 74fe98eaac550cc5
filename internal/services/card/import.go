package card

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"relais/internal/models"
)

// parseBatch reads `serial,pin,face_value` rows. A header row is skipped.
// Serials repeated within the file are reported once as duplicates.
func parseBatch(r io.Reader, batchRef string, importedBy uint) ([]models.PrepaidCard, []string, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		cards      []models.PrepaidCard
		duplicates []string
		invalid    []RowError
	)
	seen := make(map[string]bool)

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				invalid = append(invalid, RowError{Line: line, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, nil, fmt.Errorf("read csv: %w", err)
		}

		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "serial") {
			continue
		}
		if len(record) != 3 {
			invalid = append(invalid, RowError{Line: line, Reason: "expected serial,pin,face_value"})
			continue
		}

		serial := strings.TrimSpace(record[0])
		pin := strings.TrimSpace(record[1])
		faceValue, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)

		switch {
		case serial == "":
			invalid = append(invalid, RowError{Line: line, Reason: "serial is empty"})
			continue
		case pin == "":
			invalid = append(invalid, RowError{Line: line, Reason: "pin is empty"})
			continue
		case err != nil || faceValue <= 0:
			invalid = append(invalid, RowError{Line: line, Reason: "face value must be a positive number"})
			continue
		}

		if seen[serial] {
			duplicates = append(duplicates, serial)
			continue
		}
		seen[serial] = true

		cards = append(cards, models.PrepaidCard{
			Serial:     serial,
			PIN:        pin,
			FaceValue:  faceValue,
			BatchRef:   batchRef,
			Status:     models.CardStatusAvailable,
			ImportedBy: importedBy,
		})
	}
	return cards, duplicates, invalid, nil
}

// dropExisting removes cards whose serial is in existing.
func dropExisting(cards []models.PrepaidCard, existing []string) []models.PrepaidCard {
	if len(existing) == 0 {
		return cards
	}
	skip := make(map[string]bool, len(existing))
	for _, s := range existing {
		skip[s] = true
	}
	kept := cards[:0]
	for _, c := range cards {
		if !skip[c.Serial] {
			kept = append(kept, c)
		}
	}
	return kept
}
