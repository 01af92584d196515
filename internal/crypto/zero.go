package crypto

// Zero overwrites key material in memory with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
