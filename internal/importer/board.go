// Package importer reads quiz boards from CSV exports.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
)

// Header is the expected first CSV row.
var Header = []string{"category", "points", "question", "answer"}

// ErrNoClues is returned for a CSV without data rows.
var ErrNoClues = errors.New("csv has no clues")

// ReadBoard builds a board from CSV rows of category, points, question and
// answer. Categories keep their first-appearance order and clues their file
// order; an empty points cell takes the row's default value.
func ReadBoard(r io.Reader) (domain.Board, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.Board{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return domain.Board{}, ErrNoClues
	}

	var board domain.Board
	index := make(map[string]int)
	var nextID uint32 = 1

	for i, record := range records {
		line := i + 2
		name := strings.TrimSpace(record[0])
		if name == "" {
			return domain.Board{}, fmt.Errorf("line %d: category is required", line)
		}

		ci, ok := index[name]
		if !ok {
			if len(board.Categories) >= domain.MaxCategories {
				return domain.Board{}, fmt.Errorf("line %d: %w", line, domain.ErrMaxCategories)
			}
			ci = len(board.Categories)
			index[name] = ci
			board.Categories = append(board.Categories, domain.Category{Name: name})
		}

		cat := &board.Categories[ci]
		if len(cat.Clues) >= domain.MaxRows {
			return domain.Board{}, fmt.Errorf("line %d: category %q: %w", line, name, domain.ErrMaxRows)
		}

		points := (len(cat.Clues) + 1) * domain.PointsPerRow
		if cell := strings.TrimSpace(record[1]); cell != "" {
			points, err = strconv.Atoi(cell)
			if err != nil || points < 0 {
				return domain.Board{}, fmt.Errorf("line %d: bad points %q", line, cell)
			}
		}

		cat.Clues = append(cat.Clues, domain.Clue{
			ID:       nextID,
			Question: strings.TrimSpace(record[2]),
			Answer:   strings.TrimSpace(record[3]),
			Points:   points,
		})
		nextID++
	}

	if err := board.Validate(); err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

func isHeader(record []string) bool {
	for i, h := range Header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), h) {
			return false
		}
	}
	return true
}
