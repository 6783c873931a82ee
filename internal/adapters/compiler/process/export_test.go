package process

// ScriptPath returns the patched compiler script, empty before first use.
func (c *Compiler) ScriptPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.script
}
