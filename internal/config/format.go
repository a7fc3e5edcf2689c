package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/siteplan/internal/foundation/errors"
)

// Format names a document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
	FormatHCL  Format = "hcl"
)

var extensions = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
	".cue":  FormatCUE,
	".hcl":  FormatHCL,
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	f, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// decode parses data into a generic tree of maps, slices and scalars.
func decode(data []byte, format Format, source string) (any, error) {
	var (
		tree any
		err  error
	)
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &tree)
	case FormatTOML:
		err = toml.Unmarshal(data, &tree)
	case FormatJSON:
		tree, err = decodeJSON(data)
	case FormatCUE:
		return decodeCUE(data, source)
	case FormatHCL:
		tree, err = decodeHCL(data, source)
	default:
		return nil, ferrors.ConfigError("unsupported configuration format").
			WithContext("format", string(format)).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, fmt.Sprintf("parse %s document", format)).
			WithContext("source", source).
			Build()
	}
	return tree, nil
}

// decodeJSON keeps numbers as json.Number and rejects trailing content.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after the top-level value")
	}
	return tree, nil
}
