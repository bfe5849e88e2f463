package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPayload returned for update payload which can't be turned into a script
var ErrInvalidPayload = errors.New("invalid update payload")

// ScriptLang is the engine's scripting language
const ScriptLang = "painless"

var fieldRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Script is a partial document update executed by the engine.
// Values are passed as params and never interpolated into the source.
type Script struct {
	Source string
	Lang   string
	Params map[string]interface{}
}

// NewScript makes script assigning each patch field, fields in sorted order.
// Field may address nested object with dots, i.e. "address.city".
func NewScript(patch map[string]interface{}) (*Script, error) {
	fields := make([]string, 0, len(patch))
	for field := range patch {
		if !fieldRe.MatchString(field) {
			return nil, errors.Wrapf(ErrInvalidPayload, "bad field name %q", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var src strings.Builder
	params := make(map[string]interface{}, len(patch))
	for _, field := range fields {
		src.WriteString(fmt.Sprintf("ctx._source.%s = params['%s'];", field, field))
		params[field] = patch[field]
	}
	return &Script{Source: src.String(), Lang: ScriptLang, Params: params}, nil
}

// Empty checks if script does nothing
func (s *Script) Empty() bool {
	return s.Source == ""
}

// Map renders script object of update request body
func (s *Script) Map() map[string]interface{} {
	res := map[string]interface{}{"source": s.Source, "lang": s.Lang}
	if len(s.Params) > 0 {
		res["params"] = s.Params
	}
	return res
}
