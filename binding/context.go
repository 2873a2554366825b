package binding

// Context is the data context the host supplies for a node during traversal.
type Context struct {
	// Data is the current data value ($data) in scope for the node.
	Data any
	// Parent is the enclosing context, nil at the root.
	Parent *Context
}

// NewContext returns a root context over data.
func NewContext(data any) *Context {
	return &Context{Data: data}
}

// Extend returns a child context whose current data is data.
func (c *Context) Extend(data any) *Context {
	return &Context{Data: data, Parent: c}
}

// Root returns the data of the outermost context.
func (c *Context) Root() any {
	if c == nil {
		return nil
	}
	root := c
	for root.Parent != nil {
		root = root.Parent
	}
	return root.Data
}

// data returns the current data, tolerating a nil context.
func (c *Context) data() any {
	if c == nil {
		return nil
	}
	return c.Data
}
