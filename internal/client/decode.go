package client

import (
	"encoding/json"
	"fmt"

	"github.com/ashendes/restaurant-admin/internal/models"
)

// decodeList decodes a list envelope; a missing data field is an empty list
func decodeList(body []byte, out interface{}) error {
	var envelope models.APIResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse list: %w", err)
	}
	return nil
}
