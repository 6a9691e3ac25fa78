package report

type Kind int

const (
	KindOrganization Kind = iota
	KindProject
	KindCategory
	KindItem
	KindPass
	KindFail
	KindPlaceholder
)

// Node is one entry of the result tree. Nodes handed to Tree.Attach must not
// be modified afterwards; the tree owns them from then on.
type Node struct {
	Label    string
	Kind     Kind
	Children []*Node
}

func NewCategory(label string) *Node { return &Node{Label: label, Kind: KindCategory} }

func Item(label string) *Node { return &Node{Label: label, Kind: KindItem} }

func Placeholder(label string) *Node { return &Node{Label: label, Kind: KindPlaceholder} }

// Finding returns a pass or fail leaf.
func Finding(passed bool, msg string) *Node {
	if passed {
		return &Node{Label: msg, Kind: KindPass}
	}
	return &Node{Label: msg, Kind: KindFail}
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first direct child with the given label.
func (n *Node) Find(label string) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

func (n *Node) clone() *Node {
	c := &Node{Label: n.Label, Kind: n.Kind}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.clone()
		}
	}
	return c
}
