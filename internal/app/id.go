package app

import "github.com/google/uuid"

// generateID produces a random identifier with a kind prefix ("C", "R", ...).
// Isolated here so the ID strategy can evolve independently.
func generateID(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return prefix + id.String(), nil
}
