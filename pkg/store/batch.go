package store

// Batch is an ordered group of payloads removed from the store together.
type Batch [][]byte

// Len returns the number of payloads in the batch.
func (b Batch) Len() int {
	return len(b)
}

// Empty reports whether the batch holds no payloads.
func (b Batch) Empty() bool {
	return len(b) == 0
}

// Bytes returns the sum of all payload lengths.
func (b Batch) Bytes() int {
	total := 0
	for _, p := range b {
		total += len(p)
	}
	return total
}
