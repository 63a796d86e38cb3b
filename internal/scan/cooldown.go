package scan

// Cooldown counts the sampling ticks still to be skipped after a detected
// result screen. The zero value is ready to use.
type Cooldown struct {
	remaining int
}

// Remaining returns the number of ticks left to skip.
func (c *Cooldown) Remaining() int {
	return c.remaining
}

// Skip consumes one tick if any remain and reports whether it did.
func (c *Cooldown) Skip() bool {
	if c.remaining <= 0 {
		return false
	}
	c.remaining--
	return true
}

// Reset arms the cooldown for n ticks. Negative n disarms it.
func (c *Cooldown) Reset(n int) {
	if n < 0 {
		n = 0
	}
	c.remaining = n
}
