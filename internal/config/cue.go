package config

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
	"git.home.luguber.info/inful/siteplan/internal/schema"
)

//go:embed schema.cue
var documentSchema []byte

const documentDefinition = "#Document"

// decodeCUE unifies the document with the embedded schema, then hands the
// concrete result over as JSON so it walks like every other format.
func decodeCUE(data []byte, source string) (any, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(documentSchema, cue.Filename("schema.cue"))
	if err := schemaValue.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "compile embedded document schema").Build()
	}
	root := schemaValue.LookupPath(cue.ParsePath(documentDefinition))
	if err := root.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "schema definition "+documentDefinition+" not found").Build()
	}

	userValue := ctx.CompileBytes(data, cue.Filename(source))
	if err := userValue.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse cue document").
			WithContext("source", source).
			Build()
	}

	unified := root.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueSchemaError(err)
	}
	out, err := unified.MarshalJSON()
	if err != nil {
		return nil, cueSchemaError(err)
	}
	return decodeJSON(out)
}

// cueSchemaError reports the first CUE violation as a schema error at the
// offending field.
func cueSchemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return schema.Errorf("", "%v", err)
	}
	first := errs[0]
	at := cuePath(cueerrors.Path(first))
	msg := first.Error()
	if p := at.String(); p != "" {
		msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, p), ":"))
	}
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return &schema.Error{Path: at, Reason: msg}
}

// cuePath turns ["site", "sidebar", "0", "link"] into "site.sidebar[0].link".
func cuePath(parts []string) schema.Path {
	var p schema.Path
	for _, part := range parts {
		if strings.HasPrefix(part, "#") {
			continue
		}
		if i, err := strconv.Atoi(part); err == nil && p != "" {
			p = p.Index(i)
			continue
		}
		p = p.Field(part)
	}
	return p
}
