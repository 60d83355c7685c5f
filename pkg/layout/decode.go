package layout

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/vango-dev/tessera/pkg/tokens"
)

// StackOptionsFromMap decodes stack options from an untyped map such as a
// parsed YAML document. Scalars are converted where possible ("4" becomes
// 4) and a single class string is accepted in place of a list. Unknown
// keys are an error.
func StackOptionsFromMap(m map[string]any) (StackOptions, error) {
	var opts StackOptions
	if err := decode(m, &opts); err != nil {
		return StackOptions{}, fmt.Errorf("decode stack options: %w", err)
	}
	return opts, nil
}

// GridOptionsFromMap decodes grid options from an untyped map. The base
// breakpoint may be written as "base" in columnsAt.
func GridOptionsFromMap(m map[string]any) (GridOptions, error) {
	var opts GridOptions
	if err := decode(m, &opts); err != nil {
		return GridOptions{}, fmt.Errorf("decode grid options: %w", err)
	}
	if n, ok := opts.ColumnsAt["base"]; ok {
		delete(opts.ColumnsAt, "base")
		opts.ColumnsAt[tokens.BreakpointBase] = n
	}
	return opts, nil
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
