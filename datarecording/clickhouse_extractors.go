package datarecording

import (
	"fmt"
	"reflect"
)

// These extractors use minimal reflection ONLY as a fallback
// The fast path uses type assertions in the convert functions

func extractPropertyEntry(entry any) propertyEntry {
	v := reflect.ValueOf(entry)

	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("expected struct for property entry, got %T", entry))
	}

	result := propertyEntry{}

	if field := v.FieldByName("Property"); field.IsValid() {
		result.Property = field.String()
	}
	if field := v.FieldByName("Value"); field.IsValid() {
		result.Value = field.String()
	}

	return result
}

func extractCommitEntry(entry any) commitEntry {
	v := reflect.ValueOf(entry)

	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("expected struct for commit entry, got %T", entry))
	}

	result := commitEntry{}

	if field := v.FieldByName("System"); field.IsValid() {
		result.System = field.String()
	}
	if field := v.FieldByName("Time"); field.IsValid() {
		result.Time = field.Float()
	}

	return result
}
