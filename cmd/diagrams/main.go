// Command diagrams renders the architecture documentation diagrams
// into the docs directory as Graphviz dot files.
package main

import (
	"log"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/generic"
)

// generateArchitectureDiagram renders the top-level data flow: the
// user runs the CLI, which reads the reference export and the input
// source and writes the linked keys out.
func generateArchitectureDiagram() {
	d, err := diagram.New(diagram.Filename("architecture"), diagram.Label("addrlink architecture"), diagram.Direction("LR"))
	if err != nil {
		log.Fatal(err)
	}

	user := generic.Blank.Blank(diagram.NodeLabel("User"))
	cli := generic.Blank.Blank(diagram.NodeLabel("addrlink CLI"))
	reference := generic.Storage.Storage(diagram.NodeLabel("Reference export (xlsx)"))
	input := generic.Storage.Storage(diagram.NodeLabel("Input workbook (xlsx)"))
	database := generic.Database.Sql(diagram.NodeLabel("Postgres"))
	output := generic.Storage.Storage(diagram.NodeLabel("Output workbook (xlsx)"))

	d.Connect(user, cli, diagram.Forward())
	d.Connect(reference, cli, diagram.Forward())
	d.Connect(input, cli, diagram.Forward())
	d.Connect(database, cli, diagram.Bidirectional())
	d.Connect(cli, output, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}

// generateComponentDiagram renders the internal package structure of
// the linking pipeline.
func generateComponentDiagram() {
	d, err := diagram.New(diagram.Filename("components"), diagram.Label("addrlink components"), diagram.Direction("TB"))
	if err != nil {
		log.Fatal(err)
	}

	cmd := generic.Blank.Blank(diagram.NodeLabel("cmd/addrlink"))
	pipeline := generic.Blank.Blank(diagram.NodeLabel("internal/pipeline"))
	parser := generic.Blank.Blank(diagram.NodeLabel("internal/address"))
	linker := generic.Blank.Blank(diagram.NodeLabel("internal/linker"))
	refdata := generic.Blank.Blank(diagram.NodeLabel("internal/refdata"))
	out := generic.Blank.Blank(diagram.NodeLabel("internal/output"))

	d.Connect(cmd, pipeline, diagram.Forward())
	d.Connect(pipeline, parser, diagram.Forward())
	d.Connect(pipeline, linker, diagram.Forward())
	d.Connect(linker, refdata, diagram.Forward())
	d.Connect(pipeline, out, diagram.Forward())

	if err := d.Render(); err != nil {
		log.Fatal(err)
	}
}

func main() {
	generateArchitectureDiagram()
	generateComponentDiagram()
}
