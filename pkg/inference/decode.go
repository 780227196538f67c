package inference

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode copies a reply into a typed struct using `mapstructure` tags.
func Decode(reply Reply, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to build reply decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(reply)); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}
