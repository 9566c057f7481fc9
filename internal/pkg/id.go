package pkg

import "github.com/google/uuid"

// GenerateGameID - generates a unique identifier for the game.
func GenerateGameID() string {
	return uuid.NewString()
}

// GeneratePlayerID - generates a unique identifier for the player.
func GeneratePlayerID() string {
	return uuid.NewString()
}
