package neural

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/awalterschulze/gographviz"
)

type layerNode struct {
	Index      int
	Inputs     int
	Neurons    int
	Activation Activation
	Norm       float64
}

// ToDot renders the network as a graphviz digraph with one node per layer, input layer first.
func (n *Net) ToDot() string {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		panic(err)
	}
	g.SetDir(true)

	g.AddNode("G", "input", map[string]string{
		"fontname": "Monaco",
		"shape":    "box",
		"label":    fmt.Sprintf(`"input\n%d"`, n.InputWidth()),
	})

	var buf bytes.Buffer
	prev := "input"
	for i, l := range n.layers {
		node := layerNode{
			Index:      i,
			Inputs:     l.inputs,
			Neurons:    l.neurons,
			Activation: l.Activation,
			Norm:       l.NormSquared(),
		}
		if err := layerTmpl.Execute(&buf, node); err != nil {
			panic(err)
		}
		id := fmt.Sprintf("layer%d", i)
		g.AddNode("G", id, map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		})
		buf.Reset()
		g.AddEdge(prev, id, true, nil)
		prev = id
	}
	return g.String()
}

const layerTmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Layer</TD><TD>{{.Index}}</TD></TR>
<TR><TD>Shape</TD><TD>{{.Inputs}} → {{.Neurons}}</TD></TR>
<TR><TD>Activation</TD><TD>{{.Activation}}</TD></TR>
<TR><TD>|w|²</TD><TD>{{printf "%.4g" .Norm}}</TD></TR>
</TABLE>
>`

var layerTmpl = template.Must(template.New("layer").Parse(layerTmplRaw))
