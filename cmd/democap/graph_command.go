package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"democap/internal/graph"
)

func newGraphCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var printDOT bool

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Render a YAML knowledge graph to SVG and HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			doc, err := graph.Load(args[0])
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if printDOT {
				fmt.Fprintln(stdout, doc.DOT())
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.GraphOutputDir
			}
			svgPath, err := graph.Render(cmd.Context(), doc, graph.RenderOptions{
				DotBinary: cfg.Graph.DotBinary,
				OutputDir: dir,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			htmlPath, err := graph.WriteHTML(svgPath, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "SVG:  %s\n", svgPath)
			fmt.Fprintf(stdout, "HTML: %s\n", htmlPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the rendered files (default from config)")
	cmd.Flags().BoolVar(&printDOT, "dot", false, "Print the Graphviz source instead of rendering")
	return cmd
}
