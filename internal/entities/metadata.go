package entities

import "fmt"

// Partition selects one of an entity's two metadata maps.
type Partition string

const (
	// PartitionPublic is the metadata map readable by the owner, managers,
	// and (for catalog classes) everyone.
	PartitionPublic Partition = "public"

	// PartitionPrivate is the metadata map readable only by holders of the
	// class's managing permission.
	PartitionPrivate Partition = "private"
)

// ParsePartition converts a string to a Partition
func ParsePartition(s string) (Partition, error) {
	switch Partition(s) {
	case PartitionPublic:
		return PartitionPublic, nil
	case PartitionPrivate:
		return PartitionPrivate, nil
	default:
		return "", fmt.Errorf("unknown partition: %s", s)
	}
}

// MetadataItem is a single key/value pair in a metadata map.
type MetadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Metadata is one partition's key/value map. Keys are unique; insertion
// order carries no meaning.
type Metadata map[string]string

// Get returns the value for key and whether it exists.
func (m Metadata) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Store upserts the given items into the map.
func (m Metadata) Store(items []MetadataItem) {
	for _, item := range items {
		m[item.Key] = item.Value
	}
}

// DeleteKeys removes the given keys. Missing keys are ignored.
func (m Metadata) DeleteKeys(keys []string) {
	for _, key := range keys {
		delete(m, key)
	}
}

// Clear removes every entry from the map.
func (m Metadata) Clear() {
	for k := range m {
		delete(m, k)
	}
}

// Clone returns a copy of the map, never nil.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ValidateItems checks that all items carry non-empty keys.
func ValidateItems(items []MetadataItem) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one metadata item is required")
	}
	for i, item := range items {
		if item.Key == "" {
			return fmt.Errorf("metadata key is required (item %d)", i)
		}
	}
	return nil
}

// ValidateKeys checks that all keys are non-empty.
func ValidateKeys(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("at least one metadata key is required")
	}
	for i, key := range keys {
		if key == "" {
			return fmt.Errorf("metadata key is required (key %d)", i)
		}
	}
	return nil
}
