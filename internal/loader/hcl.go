package loader

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// fileRoot decodes the top-level blocks of a settings file.
type fileRoot struct {
	Variables []*variableBlock `hcl:"variable,block"`
}

// variableBlock keeps the body undecoded so that unknown sections reach
// validation instead of failing the decode.
type variableBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

func parseHCL(filename string, data []byte) (*settings.Raw, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeHCL(file.Body)
}

func parseHCLJSON(filename string, data []byte) (*settings.Raw, error) {
	file, diags := hclparse.NewParser().ParseJSON(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeHCL(file.Body)
}

func decodeHCL(body hcl.Body) (*settings.Raw, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	raw := &settings.Raw{}
	for _, v := range root.Variables {
		var (
			sections []settings.RawSection
			err      error
		)
		if native, ok := v.Body.(*hclsyntax.Body); ok {
			sections, err = nativeSections(native)
		} else {
			sections, err = attributeSections(v.Body)
		}
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		raw.Entries = append(raw.Entries, settings.RawEntry{Name: v.Name, Sections: sections})
	}
	return raw, nil
}

// nativeSections reads sections written as blocks, in source order.
// Attributes at variable level are kept as sections too so validation can
// report them.
func nativeSections(body *hclsyntax.Body) ([]settings.RawSection, error) {
	type positioned struct {
		offset  int
		section settings.RawSection
	}
	var all []positioned

	for _, block := range body.Blocks {
		sec := settings.RawSection{Key: block.Type}
		fields, err := nativeFields(block.Body)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", block.Type, err)
		}
		sec.Fields = fields
		all = append(all, positioned{offset: block.TypeRange.Start.Byte, section: sec})
	}
	for _, attr := range body.Attributes {
		sec, err := attributeSection(attr.Name, attr.Expr)
		if err != nil {
			return nil, err
		}
		all = append(all, positioned{offset: attr.SrcRange.Start.Byte, section: sec})
	}

	sort.Slice(all, func(i, j int) bool { return all[i].offset < all[j].offset })
	out := make([]settings.RawSection, len(all))
	for i, p := range all {
		out[i] = p.section
	}
	return out, nil
}

func nativeFields(body *hclsyntax.Body) ([]settings.RawField, error) {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte })

	fields := make([]settings.RawField, 0, len(attrs)+len(body.Blocks))
	for _, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", attr.Name, err)
		}
		fields = append(fields, settings.RawField{Key: attr.Name, Value: native})
	}
	// Nested blocks are never valid fields; keep their names for validation.
	for _, block := range body.Blocks {
		fields = append(fields, settings.RawField{Key: block.Type})
	}
	return fields, nil
}

// attributeSections reads sections written as object attributes, the only
// form available in the JSON syntax.
func attributeSections(body hcl.Body) ([]settings.RawSection, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	list := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		list = append(list, attr)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Range.Start.Byte < list[j].Range.Start.Byte })

	out := make([]settings.RawSection, 0, len(list))
	for _, attr := range list {
		sec, err := attributeSection(attr.Name, attr.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, nil
}

func attributeSection(name string, expr hcl.Expression) (settings.RawSection, error) {
	sec := settings.RawSection{Key: name}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return sec, diags
	}
	native, err := ctyToNative(val)
	if err != nil {
		return sec, fmt.Errorf("section %q: %w", name, err)
	}
	switch m := native.(type) {
	case nil:
		sec.Null = true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sec.Fields = append(sec.Fields, settings.RawField{Key: k, Value: m[k]})
		}
	default:
		return sec, fmt.Errorf("section %q: expected an object, got %T", name, native)
	}
	return sec, nil
}

// ctyToNative converts a cty.Value into nil, float64, string, bool,
// []any or map[string]any.
func ctyToNative(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = native
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			native, err := ctyToNative(v)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %s", ty.FriendlyName())
	}
}
