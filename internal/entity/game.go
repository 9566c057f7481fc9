package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
)

const (
	StatusInProgress = "in_progress"
	StatusDrawn      = "drawn"
	StatusWon        = "won"

	EmptyCell = ""

	EventUpdateGame = "update-game"
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeDrawn
	OutcomeWon
)

func (that Outcome) String() string {
	switch that {
	case OutcomePending:
		return "pending"
	case OutcomeDrawn:
		return "drawn"
	case OutcomeWon:
		return "won"
	default:
		return fmt.Sprintf("outcome(%d)", int(that))
	}
}

// Board is the 3x3 grid in row-major order. A cell holds EmptyCell or a player id.
type Board [9]string

// Result is the classification of a board. Winner is set only for OutcomeWon.
type Result struct {
	Outcome Outcome
	Winner  string
}

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      string    `json:"turn,omitempty"`
	Status    string    `json:"status"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Winner    string    `json:"winner,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGame - the creator is player1 and always moves first.
func NewGame(id, player1, player2 string, now time.Time) *Game {
	return &Game{
		ID:        id,
		Board:     Board{},
		Turn:      player1,
		Status:    StatusInProgress,
		Player1:   player1,
		Player2:   player2,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClassifyBoard - checks the win lines in WinCombos order, then looks for an empty cell.
func ClassifyBoard(board Board) Result {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Result{Outcome: OutcomeWon, Winner: a}
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range board {
		if cell == EmptyCell {
			return Result{Outcome: OutcomePending}
		}
	}

	return Result{Outcome: OutcomeDrawn}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusDrawn || that.Status == StatusWon
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) HasPlayer(playerID string) bool {
	return playerID != "" && (that.Player1 == playerID || that.Player2 == playerID)
}

func (that *Game) Opponent(playerID string) string {
	if playerID == that.Player1 {
		return that.Player2
	}
	return that.Player1
}

// ValidateMove - checks that playerID may replace the board with proposed.
// The game itself is never modified.
func (that *Game) ValidateMove(playerID string, proposed Board) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != playerID {
		return apperror.ErrNotYourTurn
	}

	if proposed == that.Board {
		return apperror.ErrMakeYourMove
	}

	changed := -1
	for i := range proposed {
		if proposed[i] == that.Board[i] {
			continue
		}

		if changed != -1 {
			return apperror.ErrIllegalMove
		}
		changed = i
	}

	if that.Board[changed] != EmptyCell || proposed[changed] != playerID {
		return apperror.ErrIllegalMove
	}

	return nil
}

// Apply - validates the move and returns the next state of the game.
func (that *Game) Apply(playerID string, proposed Board, now time.Time) (*Game, error) {
	if err := that.ValidateMove(playerID, proposed); err != nil {
		return nil, err
	}

	next := *that
	next.Board = proposed
	next.Version = that.Version + 1
	next.UpdatedAt = now

	switch result := ClassifyBoard(proposed); result.Outcome {
	case OutcomeWon:
		next.Status = StatusWon
		next.Winner = result.Winner
		next.Turn = ""
	case OutcomeDrawn:
		next.Status = StatusDrawn
		next.Turn = ""
	default:
		next.Turn = that.Opponent(that.Turn)
	}

	return &next, nil
}

// GameDetails is a game with its participants resolved for display.
type GameDetails struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      string    `json:"turn,omitempty"`
	Status    string    `json:"status"`
	Player1   *Player   `json:"player1"`
	Player2   *Player   `json:"player2"`
	Winner    *Player   `json:"winner,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGameDetails(game *Game, player1, player2, winner *Player) *GameDetails {
	return &GameDetails{
		ID:        game.ID,
		Board:     game.Board,
		Turn:      game.Turn,
		Status:    game.Status,
		Player1:   player1,
		Player2:   player2,
		Winner:    winner,
		Version:   game.Version,
		CreatedAt: game.CreatedAt,
		UpdatedAt: game.UpdatedAt,
	}
}
