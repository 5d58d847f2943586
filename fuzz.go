package nrbf

// Fuzz is the go-fuzz entry point: build a Parser over the corpus
// entry and run it through Parse, reporting whether the input was
// accepted.
func Fuzz(data []byte) int {
	p := NewBytes(data, &Options{})
	if _, err := p.Parse(); err != nil {
		return 0
	}
	return 1
}
