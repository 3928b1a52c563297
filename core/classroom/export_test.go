package classroom

// SetJoinCodeGenerator swaps the join code source and returns a func restoring it.
func SetJoinCodeGenerator(fn func(n int) (string, error)) (restore func()) {
	orig := generateJoinCode
	generateJoinCode = fn
	return func() { generateJoinCode = orig }
}
