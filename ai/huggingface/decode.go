package huggingface

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/poiesic/natiq/core"
)

// decode unmarshals a pipeline response body. Pipelines answer with a JSON
// array of result objects.
func decode(resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrMalformedOutput, err)
	}
	return nil
}
