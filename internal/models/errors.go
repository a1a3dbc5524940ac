package models

import "fmt"

// ValidationError represents invalid user-supplied input
// such as an unknown gas name or a malformed date
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// RegistryError is returned when a name or identifier is not present in a
// static registry. It signals a contract violation between the option layer
// and the registries, never a transient condition.
type RegistryError struct {
	Registry string
	Key      string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s registry has no entry for %q", e.Registry, e.Key)
}

// IsTransient returns false as registry misses are permanent
func (e *RegistryError) IsTransient() bool {
	return false
}
