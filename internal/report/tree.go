// Package report renders the scan result tree with a transient status line.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"golang.org/x/term"
)

// Tree is the live result view. Every mutation and every frame is produced
// under one mutex, so a frame never shows a category without its children.
//
// In live mode (a terminal) each change repaints the tree and the status
// line in place. Otherwise nothing is painted until Flush prints the final
// tree, and warnings go straight to the error writer.
type Tree struct {
	mu sync.Mutex

	root    *Node
	status  string
	out     io.Writer
	errOut  io.Writer
	live    bool
	painted int // lines of the frame currently on screen
	flushed bool
	styles  styles
}

type styles struct {
	org         lipgloss.Style
	project     lipgloss.Style
	category    lipgloss.Style
	item        lipgloss.Style
	pass        lipgloss.Style
	fail        lipgloss.Style
	placeholder lipgloss.Style
	status      lipgloss.Style
	warning     lipgloss.Style
	enumerator  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		org:         r.NewStyle().Bold(true),
		project:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		category:    r.NewStyle().Foreground(lipgloss.Color("14")),
		item:        r.NewStyle(),
		pass:        r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:        r.NewStyle().Foreground(lipgloss.Color("9")),
		placeholder: r.NewStyle().Faint(true).Italic(true),
		status:      r.NewStyle().Foreground(lipgloss.Color("11")),
		warning:     r.NewStyle().Foreground(lipgloss.Color("11")),
		enumerator:  r.NewStyle().Foreground(lipgloss.Color("8")).PaddingRight(1),
	}
}

type Option func(*Tree)

// WithLive forces live repainting on or off.
func WithLive(live bool) Option {
	return func(t *Tree) { t.live = live }
}

// New creates a tree rooted at the organization. Live mode defaults to
// whether out is a terminal.
func New(org string, out, errOut io.Writer, opts ...Option) *Tree {
	t := &Tree{
		root:   &Node{Label: org, Kind: KindOrganization},
		out:    out,
		errOut: errOut,
		live:   IsTerminal(out),
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// AddProject appends an empty project node and repaints.
func (t *Tree) AddProject(name string) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := &Node{Label: name, Kind: KindProject}
	t.root.Children = append(t.root.Children, n)
	t.paint()
	return n
}

// Attach appends a fully built category under project and repaints.
func (t *Tree) Attach(project, category *Node) {
	t.mu.Lock()
	defer t.mu.Unlock()
	project.Children = append(project.Children, category)
	t.paint()
}

func (t *Tree) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = text
	t.paint()
}

func (t *Tree) ClearStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = ""
	t.paint()
}

func (t *Tree) Redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paint()
}

// Warn prints a warning without corrupting the frame: in live mode the
// frame is erased, the warning written above it and the frame repainted.
func (t *Tree) Warn(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := t.styles.warning.Render("warning: "+strings.TrimRight(msg, "\n")) + "\n"
	if !t.live || t.flushed {
		_, _ = io.WriteString(t.errOut, line)
		return
	}
	t.erase()
	_, _ = io.WriteString(t.errOut, line)
	t.paint()
}

// Flush clears the status line and leaves the final tree on the output.
// Later calls are no-ops.
func (t *Tree) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flushed {
		return
	}
	t.status = ""
	if t.live {
		t.paint()
	} else {
		_, _ = io.WriteString(t.out, t.renderTree()+"\n")
	}
	t.flushed = true
	t.painted = 0
}

// String renders the tree without the status line.
func (t *Tree) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderTree()
}

// Snapshot returns a deep copy of the tree.
func (t *Tree) Snapshot() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root.clone()
}

// Status returns the current transient line.
func (t *Tree) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// paint writes one frame. Callers hold t.mu.
func (t *Tree) paint() {
	if !t.live || t.flushed {
		return
	}
	frame := t.renderTree() + "\n"
	if t.status != "" {
		frame += t.styles.status.Render(t.status) + "\n"
	}
	t.erase()
	_, _ = io.WriteString(t.out, frame)
	t.painted = strings.Count(frame, "\n")
}

// erase moves the cursor to the first line of the painted frame and clears
// to the end of the screen. Callers hold t.mu.
func (t *Tree) erase() {
	if t.painted == 0 {
		return
	}
	_, _ = fmt.Fprintf(t.out, "\x1b[%dF\x1b[J", t.painted)
	t.painted = 0
}

func (t *Tree) renderTree() string {
	return t.build(t.root).String()
}

func (t *Tree) build(n *Node) *tree.Tree {
	lt := tree.Root(t.label(n)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(t.styles.enumerator)
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			lt.Child(t.label(c))
			continue
		}
		lt.Child(t.build(c))
	}
	return lt
}

func (t *Tree) label(n *Node) string {
	switch n.Kind {
	case KindOrganization:
		return t.styles.org.Render(n.Label)
	case KindProject:
		return t.styles.project.Render(n.Label)
	case KindCategory:
		return t.styles.category.Render(n.Label)
	case KindPass:
		return t.styles.pass.Render("✔ " + n.Label)
	case KindFail:
		return t.styles.fail.Render("✘ " + n.Label)
	case KindPlaceholder:
		return t.styles.placeholder.Render(n.Label)
	default:
		return t.styles.item.Render(n.Label)
	}
}
