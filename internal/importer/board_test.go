package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
)

func TestReadBoard(t *testing.T) {
	csv := `category,points,question,answer
Geography,100,"Capital of France?",Paris
Science,,H2O is?,Water
Geography,250,Longest river?,Nile
Science,,"Speed of light, roughly?",300000 km/s
`
	board, err := ReadBoard(strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, board.Categories, 2)
	assert.Equal(t, "Geography", board.Categories[0].Name)
	assert.Equal(t, "Science", board.Categories[1].Name)
	assert.Equal(t, 2, board.Rows())

	geo := board.Categories[0].Clues
	assert.Equal(t, "Capital of France?", geo[0].Question)
	assert.Equal(t, "Paris", geo[0].Answer)
	assert.Equal(t, 250, geo[1].Points)

	sci := board.Categories[1].Clues
	assert.Equal(t, 100, sci[0].Points, "blank points use the row default")
	assert.Equal(t, 200, sci[1].Points)
	assert.Equal(t, "Speed of light, roughly?", sci[1].Question)

	ids := map[uint32]bool{}
	for _, cat := range board.Categories {
		for _, clue := range cat.Clues {
			assert.False(t, ids[clue.ID], "duplicate clue id %d", clue.ID)
			ids[clue.ID] = true
			assert.False(t, clue.Solved)
		}
	}
}

func TestReadBoardWithoutHeader(t *testing.T) {
	board, err := ReadBoard(strings.NewReader("Music,,Who wrote Hey Jude?,The Beatles\n"))
	require.NoError(t, err)
	assert.Len(t, board.Categories, 1)
}

func TestReadBoardErrors(t *testing.T) {
	tooManyRows := strings.Repeat("Music,,q,a\n", domain.MaxRows+1)

	var tooManyCats strings.Builder
	for i := 0; i <= domain.MaxCategories; i++ {
		tooManyCats.WriteString("Cat")
		tooManyCats.WriteString(strings.Repeat("x", i))
		tooManyCats.WriteString(",,q,a\n")
	}

	tests := []struct {
		name   string
		csv    string
		target error
	}{
		{"empty", "", ErrNoClues},
		{"header only", "category,points,question,answer\n", ErrNoClues},
		{"uneven", "A,,q,a\nA,,q,a\nB,,q,a\n", domain.ErrUnevenRows},
		{"too many rows", tooManyRows, domain.ErrMaxRows},
		{"too many categories", tooManyCats.String(), domain.ErrMaxCategories},
		{"bad points", "A,lots,q,a\n", nil},
		{"negative points", "A,-5,q,a\n", nil},
		{"missing category", " ,,q,a\n", nil},
		{"wrong column count", "A,100,q\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBoard(strings.NewReader(tt.csv))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
