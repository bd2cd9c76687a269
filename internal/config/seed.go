package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/wayfinder/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadSeed reads reference data from a YAML file. Unknown keys are rejected
// so typos do not silently drop records.
func LoadSeed(path string) (domain.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Seed{}, fmt.Errorf("failed to read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates a YAML seed document.
func ParseSeed(data []byte) (domain.Seed, error) {
	var seed domain.Seed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return domain.Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := validateSeed(seed); err != nil {
		return domain.Seed{}, err
	}
	return seed, nil
}

func validateSeed(seed domain.Seed) error {
	var errs []error
	roles := make(map[string]bool)
	for i, r := range seed.Roles {
		if r.Slug == "" {
			errs = append(errs, fmt.Errorf("roles[%d]: slug is required", i))
		}
		roles[r.Slug] = true
	}
	workshops := make(map[string]bool)
	for i, w := range seed.Workshops {
		if w.Slug == "" || w.Name == "" {
			errs = append(errs, fmt.Errorf("workshops[%d]: slug and name are required", i))
		}
		workshops[w.Slug] = true
	}
	for i, c := range seed.ContactMethods {
		if c.Slug == "" || c.Name == "" {
			errs = append(errs, fmt.Errorf("contact_methods[%d]: slug and name are required", i))
		}
	}
	for i, o := range seed.Operators {
		if o.ExternalID == 0 {
			errs = append(errs, fmt.Errorf("operators[%d]: external_id is required", i))
		}
		if !roles[o.Role] {
			errs = append(errs, fmt.Errorf("operators[%d]: unknown role %q", i, o.Role))
		}
		if o.Workshop != "" && !workshops[o.Workshop] {
			errs = append(errs, fmt.Errorf("operators[%d]: unknown workshop %q", i, o.Workshop))
		}
	}
	return errors.Join(errs...)
}
