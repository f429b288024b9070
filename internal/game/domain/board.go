// Package domain holds the passive board and team data of a quiz game.
package domain

import (
	"errors"
	"fmt"
)

const (
	// DefaultCategories and DefaultRows size a freshly created board.
	DefaultCategories = 6
	DefaultRows       = 5

	// MaxRows and MaxCategories bound the board editor.
	MaxRows       = 8
	MaxCategories = 10

	// PointsPerRow is the value step between consecutive rows.
	PointsPerRow = 100
)

var (
	ErrMaxRows          = errors.New("board already has the maximum number of rows")
	ErrMaxCategories    = errors.New("board already has the maximum number of categories")
	ErrUnevenRows       = errors.New("categories have different row counts")
	ErrCategoryNotFound = errors.New("category not found")
	ErrEmptyBoard       = errors.New("board has no clues")
)

// Clue is a single question/answer unit on the board.
type Clue struct {
	ID       uint32 `json:"id"`
	Points   int    `json:"points"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Revealed bool   `json:"revealed"`
	Solved   bool   `json:"solved"`
}

// Solve marks the clue solved and revealed. Both flags always move together.
func (c *Clue) Solve() {
	c.Revealed = true
	c.Solved = true
}

// SwapText exchanges question and answer. Applying it twice restores the clue.
func (c *Clue) SwapText() {
	c.Question, c.Answer = c.Answer, c.Question
}

// Category is a named column of clues ordered by row.
type Category struct {
	Name  string `json:"name"`
	Clues []Clue `json:"clues"`
}

// Coord addresses a clue by category column and row.
type Coord struct {
	Category int `json:"category"`
	Row      int `json:"row"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Category, c.Row)
}

// Board is the ordered set of categories in display order.
type Board struct {
	Categories []Category `json:"categories"`
}

// NewBoard builds a board with generated category names, empty clue text and
// row-tiered points. Clue ids are assigned monotonically from 1.
func NewBoard(categories, rows int) Board {
	board := Board{Categories: make([]Category, 0, categories)}
	var nextID uint32 = 1
	for i := 0; i < categories; i++ {
		cat := Category{
			Name:  fmt.Sprintf("Category %d", i+1),
			Clues: make([]Clue, 0, rows),
		}
		for row := 0; row < rows; row++ {
			cat.Clues = append(cat.Clues, Clue{ID: nextID, Points: (row + 1) * PointsPerRow})
			nextID++
		}
		board.Categories = append(board.Categories, cat)
	}
	return board
}

// DefaultBoard returns a 6x5 board.
func DefaultBoard() Board {
	return NewBoard(DefaultCategories, DefaultRows)
}

// Rows returns the row count of the first category, or 0 for an empty board.
func (b *Board) Rows() int {
	if len(b.Categories) == 0 {
		return 0
	}
	return len(b.Categories[0].Clues)
}

// Clue returns a pointer to the clue at coord, or nil when out of range.
func (b *Board) Clue(coord Coord) *Clue {
	if coord.Category < 0 || coord.Category >= len(b.Categories) {
		return nil
	}
	clues := b.Categories[coord.Category].Clues
	if coord.Row < 0 || coord.Row >= len(clues) {
		return nil
	}
	return &clues[coord.Row]
}

// NextClueID returns one past the highest clue id on the board.
func (b *Board) NextClueID() uint32 {
	var maxID uint32
	for _, cat := range b.Categories {
		for _, clue := range cat.Clues {
			if clue.ID > maxID {
				maxID = clue.ID
			}
		}
	}
	return maxID + 1
}

// AddCategory appends a category with one blank clue per existing row.
func (b *Board) AddCategory(name string) error {
	if len(b.Categories) >= MaxCategories {
		return ErrMaxCategories
	}
	rows := b.Rows()
	if len(b.Categories) == 0 {
		rows = DefaultRows
	}
	nextID := b.NextClueID()
	cat := Category{Name: name, Clues: make([]Clue, 0, rows)}
	for row := 0; row < rows; row++ {
		cat.Clues = append(cat.Clues, Clue{ID: nextID, Points: (row + 1) * PointsPerRow})
		nextID++
	}
	b.Categories = append(b.Categories, cat)
	return nil
}

// AddRow appends one clue to every category, worth one tier above the last row.
func (b *Board) AddRow() error {
	rows := b.Rows()
	if rows >= MaxRows {
		return ErrMaxRows
	}
	nextID := b.NextClueID()
	points := (rows + 1) * PointsPerRow
	for i := range b.Categories {
		b.Categories[i].Clues = append(b.Categories[i].Clues, Clue{ID: nextID, Points: points})
		nextID++
	}
	return nil
}

// RemoveRow drops the last row from every category.
func (b *Board) RemoveRow() error {
	if b.Rows() == 0 {
		return ErrEmptyBoard
	}
	for i := range b.Categories {
		clues := b.Categories[i].Clues
		if len(clues) > 0 {
			b.Categories[i].Clues = clues[:len(clues)-1]
		}
	}
	return nil
}

// RemoveCategory deletes the category at index.
func (b *Board) RemoveCategory(index int) error {
	if index < 0 || index >= len(b.Categories) {
		return fmt.Errorf("%w: index %d", ErrCategoryNotFound, index)
	}
	b.Categories = append(b.Categories[:index], b.Categories[index+1:]...)
	return nil
}

// Validate checks that every category has the same number of rows.
func (b *Board) Validate() error {
	rows := b.Rows()
	for i, cat := range b.Categories {
		if len(cat.Clues) != rows {
			return fmt.Errorf("%w: category %d has %d rows, expected %d", ErrUnevenRows, i, len(cat.Clues), rows)
		}
	}
	return nil
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := Board{Categories: make([]Category, len(b.Categories))}
	for i, cat := range b.Categories {
		out.Categories[i] = Category{Name: cat.Name, Clues: append([]Clue(nil), cat.Clues...)}
	}
	return out
}
