package session

// KeyValueStore is the client-local persistent storage holding the credential pair.
// Put and Delete apply all of their keys in a single write.
type KeyValueStore interface {
	// Get returns the values present for keys; missing keys are omitted from the map.
	Get(keys ...string) (map[string]string, error)
	Put(entries map[string]string) error
	Delete(keys ...string) error
}
