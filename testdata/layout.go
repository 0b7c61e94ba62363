package layout

type Layout struct{}

// cmd_resize resizes the node.
func (l *Layout) cmd_resize(width, height int) {}

func (l *Layout) cmd_info() {}

// cmd_swap swaps two nodes.
//
// See `swap` for details.
func cmd_swap(l *Layout, a, b int) {}

func helper() {}
