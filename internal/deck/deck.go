// Package deck loads the immutable card pool and moves learning data in
// and out of versioned backup documents. Beyond the version tag no format
// validation is performed; the store layer owns record integrity.
package deck

import (
	"encoding/json"
	"os"

	apperrors "github.com/ymatsuda/studycards/internal/errors"
	"github.com/ymatsuda/studycards/internal/logger"
	"github.com/ymatsuda/studycards/internal/models"
)

// FormatVersion tags deck files and backups. Unknown versions are rejected.
const FormatVersion = "1.0"

// File is the on-disk deck document.
type File struct {
	Version string        `json:"version"`
	Cards   []models.Card `json:"cards"`
}

// Load reads the card pool from a JSON deck file.
func Load(path string) ([]models.Card, error) {
	log := logger.Default().WithPrefix("deck")

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read deck file: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		log.Error("failed to parse deck file: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if f.Version != FormatVersion {
		return nil, apperrors.NewValidationError("version", "unsupported deck version "+f.Version)
	}

	log.Info("deck loaded: %d cards from %s", len(f.Cards), path)
	return f.Cards, nil
}
