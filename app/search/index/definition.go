package index

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Definition is a descriptor declared as data, i.e. in the definitions file
type Definition struct {
	Name       string                 `yaml:"name"`
	Properties map[string]interface{} `yaml:"properties"`
	Config     map[string]interface{} `yaml:"settings"`
	Ngram      bool                   `yaml:"ngram"`
}

// IndexName returns name of the index
func (d *Definition) IndexName() string { return d.Name }

// Mappings returns declared properties
func (d *Definition) Mappings() map[string]interface{} {
	if d.Properties == nil {
		return map[string]interface{}{}
	}
	return d.Properties
}

// Settings returns declared settings merged on top of NgramSettings if ngram enabled
func (d *Definition) Settings() map[string]interface{} {
	res := map[string]interface{}{}
	if d.Ngram {
		res = NgramSettings()
	}
	merge(res, d.Config)
	return res
}

// merge copies src into dst, nested maps are merged key by key, src wins on other values
func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		sm, srcIsMap := v.(map[string]interface{})
		dm, dstIsMap := dst[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			merge(dm, sm)
			continue
		}
		dst[k] = v
	}
}

// SearchBody has no custom search for declared indices
func (d *Definition) SearchBody(map[string]interface{}, interface{}) map[string]interface{} {
	return map[string]interface{}{}
}

type definitionsFile struct {
	Indices []*Definition `yaml:"indices"`
}

// ReadDefinitions parses yaml with list of indices and registers all of them
func ReadDefinitions(r io.Reader) (*Registry, error) {
	var f definitionsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "can't decode definitions")
	}
	descriptors := make([]Descriptor, 0, len(f.Indices))
	for _, d := range f.Indices {
		descriptors = append(descriptors, d)
	}
	return NewRegistry(descriptors...)
}

// LoadDefinitions reads definitions file
func LoadDefinitions(path string) (*Registry, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "can't open definitions %s", path)
	}
	defer fh.Close() // nolint

	return ReadDefinitions(fh)
}
