package byteutil

// PrefixedKey builds a bbolt key from a bucket prefix and an entity key.
func PrefixedKey(prefix, key string) []byte {
	b := make([]byte, 0, len(prefix)+len(key))
	b = append(b, prefix...)
	b = append(b, key...)
	return b
}
