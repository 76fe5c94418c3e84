/*
profile.go - StoreProfile value types and the profile-index loader

PURPOSE:
  StoreProfile is the opaque (to the kernel) description of one store:
  its currency, culture, payment tender types, and optional database
  binding. The kernel consumes parsed StoreProfile records; it does not
  prescribe their file format (spec.md §6) - this loader is the reference
  binding, not a requirement.

GROUNDED ON:
  factory/policy.go's PolicyFactory.ParsePolicy / FromJSON convention:
  struct-tagged JSON decode into domain structs, with a small top-level
  index document enumerating per-entity files.
*/
package storeext

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PaymentTenderType controls whether a tender permits change or demands
// exact payment (spec.md §3, §4.4).
type PaymentTenderType struct {
	ID            string `json:"id"`
	AllowsChange  bool   `json:"allowsChange"`
	RequiresExact bool   `json:"requiresExact"`
}

// DatabaseConfig is the optional per-store database binding.
type DatabaseConfig struct {
	Type             string `json:"type"`
	ConnectionString string `json:"connectionString"`
}

// StoreProfile describes one store (spec.md §3).
type StoreProfile struct {
	StoreID      string              `json:"storeId"`
	DisplayName  string              `json:"displayName"`
	Currency     string              `json:"currency"`
	Culture      string              `json:"culture"`
	Version      int                 `json:"version"`
	PaymentTypes []PaymentTenderType `json:"paymentTypes"`
	Database     *DatabaseConfig     `json:"database,omitempty"`
}

type profileIndexDocument struct {
	Profiles []string `json:"profiles"`
}

// LoadProfileIndex reads a small declarative index document (a JSON object
// whose "profiles" array lists profile file paths, relative to the index
// file's own directory) and
// decodes each referenced file into a StoreProfile. This is the reference
// binding for the "external file format, opaque to the kernel" described
// in spec.md §6 - callers with a different store-discovery mechanism may
// construct []StoreProfile however they like.
func LoadProfileIndex(indexPath string) ([]StoreProfile, error) {
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, fmt.Errorf("storeext: read profile index %q: %w", indexPath, err)
	}

	var doc profileIndexDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("storeext: parse profile index %q: %w", indexPath, err)
	}

	baseDir := filepath.Dir(indexPath)
	profiles := make([]StoreProfile, 0, len(doc.Profiles))
	for _, rel := range doc.Profiles {
		profilePath := filepath.Join(baseDir, rel)
		profileBytes, err := os.ReadFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("storeext: read profile %q: %w", profilePath, err)
		}
		var profile StoreProfile
		if err := json.Unmarshal(profileBytes, &profile); err != nil {
			return nil, fmt.Errorf("storeext: parse profile %q: %w", profilePath, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
