package loader

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/zclconf/go-cty/cty"
)

// ExportHCL renders a settings document in the HCL schema read by Load.
// A null section is written as a null attribute so that it reads back as
// null.
func ExportHCL(raw *settings.Raw) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, entry := range raw.Entries {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock("variable", []string{entry.Name}).Body()
		for _, sec := range entry.Sections {
			if sec.Null {
				block.SetAttributeValue(sec.Key, cty.NullVal(cty.DynamicPseudoType))
				continue
			}
			secBody := block.AppendNewBlock(sec.Key, nil).Body()
			for _, field := range sec.Fields {
				val, err := nativeToCty(field.Value)
				if err != nil {
					return nil, fmt.Errorf("variable %q, field %q: %w", entry.Name, field.Key, err)
				}
				secBody.SetAttributeValue(field.Key, val)
			}
		}
	}
	return f.Bytes(), nil
}

func nativeToCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return cty.NilVal, fmt.Errorf("%v has no HCL literal", x)
		}
		return cty.NumberFloatVal(x), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			var err error
			if elems[i], err = nativeToCty(e); err != nil {
				return cty.NilVal, err
			}
		}
		return cty.TupleVal(elems), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", v)
	}
}
