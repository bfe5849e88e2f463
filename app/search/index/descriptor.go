// Package index defines descriptors of searchable indices: name, field mappings,
// settings and the custom search body hook used by the query builder
package index

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalid returned for a descriptor which can't be used to address an index
var ErrInvalid = errors.New("invalid index descriptor")

// Descriptor is static metadata of one searchable entity
type Descriptor interface {
	IndexName() string                                                               // name of the index, required
	Mappings() map[string]interface{}                                                // field name -> mapping definition
	Settings() map[string]interface{}                                                // index settings
	SearchBody(body map[string]interface{}, data interface{}) map[string]interface{} // custom search body transform
}

// Base provides defaults for the optional part of Descriptor.
// Embed it and implement IndexName only.
type Base struct{}

// Mappings returns no mappings
func (Base) Mappings() map[string]interface{} { return map[string]interface{}{} }

// Settings returns no settings
func (Base) Settings() map[string]interface{} { return map[string]interface{}{} }

// SearchBody returns empty body, i.e. descriptor has no custom search
func (Base) SearchBody(map[string]interface{}, interface{}) map[string]interface{} {
	return map[string]interface{}{}
}

// Validate checks that descriptor is set and names an index
func Validate(d Descriptor) error {
	if d == nil {
		return errors.Wrap(ErrInvalid, "descriptor is nil")
	}
	if strings.TrimSpace(d.IndexName()) == "" {
		return errors.Wrapf(ErrInvalid, "descriptor %T has empty index name", d)
	}
	return nil
}
