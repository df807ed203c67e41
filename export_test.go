package vortex

// SetMaxConstants lowers the constant pool limit for tests.
func (c *Config) SetMaxConstants(n int) *Config {
	c.maxConstants = n
	return c
}
