// Package graph renders the screen map as a Mermaid flowchart.
package graph

import (
	"fmt"
	"strings"
)

// Kind selects the node shape.
type Kind int

const (
	KindMenu Kind = iota
	KindRoot
	KindForm
	KindAction
)

// Node is one screen.
type Node struct {
	ID          string
	Kind        Kind
	Permissions []string
}

// Edge links two screens. Notify marks links delivered as a button in a
// message to another chat rather than in the current one.
type Edge struct {
	From, To string
	Label    string
	Notify   bool
}

// Overlay highlights a navigation path on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart. Shapes:
// - Root: ((Circle))
// - Form: [/Parallelogram/]
// - Action: [[Subroutine]]
// - Menu: [Rectangle]
func GenerateMermaid(nodes []Node, edges []Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range nodes {
		opener, closer := "[", "]"
		switch n.Kind {
		case KindRoot:
			opener, closer = "((", "))"
		case KindForm:
			opener, closer = "[/", "/]"
		case KindAction:
			opener, closer = "[[", "]]"
		}
		label := n.ID
		if len(n.Permissions) > 0 {
			label += " <br/> 🔒 " + strings.Join(n.Permissions, ", ")
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(n.ID), opener, label, closer)
	}

	for _, e := range edges {
		arrow := "-->"
		if e.Notify {
			arrow = "-.->"
		}
		if e.Label != "" {
			text := strings.ReplaceAll(e.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", text)
			if e.Notify {
				arrow = fmt.Sprintf("-. \"%s\" .->", text)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.From), arrow, sanitizeMermaidID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || id == overlay.Current {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_").Replace(id)
}
