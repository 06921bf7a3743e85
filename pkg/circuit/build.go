package circuit

import "github.com/ardentwolf/spicesim/pkg/netlist"

// FromDocument builds a Circuit from a parsed netlist Document: it defines
// every subcircuit template, applies grounds and wire connections, expands
// each subcircuit instantiation into its mangled elements, and adds every
// element as a component in file order.
func FromDocument(doc *netlist.Document) (*Circuit, error) {
	c := New(doc.Title)

	for _, sub := range doc.Subcircuits {
		c.DefineSubcircuit(sub)
	}

	for _, g := range doc.Grounds {
		c.AddGround(g)
	}
	for _, pair := range doc.Connects {
		c.ConnectNodes(pair[0], pair[1])
	}

	for _, elem := range doc.Elements {
		if elem.Type == "X" {
			expanded, err := c.ExpandSubcircuit(elem.Name, elem.SubcktDef, elem.Nodes)
			if err != nil {
				return nil, err
			}
			for _, e := range expanded {
				if err := c.AddComponent(e, doc.ModelParams); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := c.AddComponent(elem, doc.ModelParams); err != nil {
			return nil, err
		}
	}

	c.ProcessLabelConnections()
	return c, nil
}
