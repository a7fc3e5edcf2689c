package config

import (
	"errors"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// decodeHCL reads top-level attributes (site = { ... }, bundle = { ... }).
// Expressions are evaluated without variables or functions, so a document
// is plain data; the cty values are converted through JSON into the
// generic tree.
func decodeHCL(data []byte, source string) (any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, source)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	tree := make(map[string]any, len(attrs))
	for _, name := range names {
		v, err := hclAttribute(attrs[name])
		if err != nil {
			return nil, err
		}
		tree[name] = v
	}
	return tree, nil
}

func hclAttribute(attr *hcl.Attribute) (any, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if !val.IsWhollyKnown() {
		return nil, errors.New(attr.Name + ": value is not known without evaluation context")
	}
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	return decodeJSON(raw)
}
