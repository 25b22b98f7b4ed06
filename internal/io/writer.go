package io

import (
	"encoding/json"
	"os"

	"newsscraper/pkg/models"
)

// WriteBatchResult saves the batch result to a JSON file.
func WriteBatchResult(result models.ScrapeBatchResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
