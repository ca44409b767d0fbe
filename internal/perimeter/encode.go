package perimeter

import (
	"encoding/json"
	"fmt"

	"github.com/dotfed/idhost/models"
)

// encodeInstructions serializes the instruction set for persistence as the
// transfer's first temp part. The key header inside stays encrypted; the
// temp area never holds clear-text key material.
func encodeInstructions(instructions models.TransferInstructionSet) ([]byte, error) {
	raw, err := json.Marshal(instructions)
	if err != nil {
		return nil, fmt.Errorf("marshal instruction set: %w", err)
	}

	return raw, nil
}
