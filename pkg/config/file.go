package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML loads configuration from a YAML file
func LoadYAML(path string, target interface{}) error {
	// #nosec G304 -- path is provided by the caller (library function); callers should validate/lock down inputs if untrusted.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}

// LoadJSON loads configuration from a JSON file
func LoadJSON(path string, target interface{}) error {
	// #nosec G304 -- path is provided by the caller (library function); callers should validate/lock down inputs if untrusted.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// FileSource serves keys from a YAML or JSON document. Nested mappings are
// flattened with "." so both of these define the same key:
//
//	servicecomb.executor.default.group: 4
//
//	servicecomb:
//	  executor:
//	    default:
//	      group: 4
type FileSource struct {
	path   string
	values map[string]string
}

// NewFileSource reads and flattens the document at path
func NewFileSource(path string) (*FileSource, error) {
	var doc map[string]interface{}
	if err := Load(path, &doc); err != nil {
		return nil, err
	}
	return &FileSource{path: path, values: flatten("", doc)}, nil
}

// Lookup implements Source
func (s *FileSource) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

// Keys returns every flattened key, sorted
func (s *FileSource) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *FileSource) String() string {
	return "file:" + s.path
}

func flatten(prefix string, node interface{}) map[string]string {
	out := make(map[string]string)
	var walk func(prefix string, node interface{})
	walk = func(prefix string, node interface{}) {
		switch v := node.(type) {
		case map[string]interface{}:
			for k, child := range v {
				walk(joinKey(prefix, k), child)
			}
		case map[interface{}]interface{}:
			for k, child := range v {
				walk(joinKey(prefix, fmt.Sprint(k)), child)
			}
		case nil:
			// explicit null: treated as absent
		case float64:
			// JSON numbers; keep integers free of exponent notation
			out[prefix] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			if prefix != "" {
				out[prefix] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}
	walk(prefix, node)
	return out
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
