package storeext

import "fmt"

// ConfigurationMissingError mirrors kernel's error of the same name: a
// required collaborator was never wired at construction time.
type ConfigurationMissingError struct {
	Field string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("storeext: configuration missing: %s", e.Field)
}
