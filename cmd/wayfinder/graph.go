package main

import (
	"fmt"

	"github.com/aretw0/wayfinder/internal/presentation/graph"
	"github.com/aretw0/wayfinder/internal/screens"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/form"
	"github.com/aretw0/wayfinder/pkg/navpath"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the screen map as a Mermaid flowchart",
	Long: `Prints every registered screen and the buttons linking them. With
--path, the segments of a navigation token are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("path")

		routes := screens.New(screens.Deps{}).Routes(form.NewStore(memory.NewCache()))
		nodes := make([]graph.Node, 0, len(routes))
		for _, r := range routes {
			n := graph.Node{ID: r.Segment, Permissions: r.Permissions}
			switch {
			case r.EntryGate:
				n.Kind = graph.KindRoot
			case r.Form != nil:
				n.Kind = graph.KindForm
			case screens.IsAction(r.Segment):
				n.Kind = graph.KindAction
			}
			nodes = append(nodes, n)
		}
		var edges []graph.Edge
		for _, l := range screens.Links() {
			edges = append(edges, graph.Edge{From: l.From, To: l.To, Label: l.Label, Notify: l.Notify})
		}

		var overlay *graph.Overlay
		if token != "" {
			p, err := navpath.Decode(token)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Visited: p.Segments, Current: p.Current()}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(nodes, edges, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("path", "", "Navigation token to highlight")
}
