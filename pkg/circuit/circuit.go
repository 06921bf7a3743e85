// Package circuit holds the node registry, ground set, component
// collection, label equivalence classes and subcircuit definitions that
// together make up a single circuit graph, independent of any particular
// analysis run.
package circuit

import (
	"fmt"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/device"
	"github.com/ardentwolf/spicesim/pkg/netlist"
)

type Circuit struct {
	Name string

	nodes        *NodeRegistry
	devices      []device.Device
	deviceByName map[string]device.Device

	labels      map[string][]string
	subcircuits map[string]*netlist.Subcircuit
}

func New(name string) *Circuit {
	return &Circuit{
		Name:         name,
		nodes:        NewNodeRegistry(),
		deviceByName: make(map[string]device.Device),
		labels:       make(map[string][]string),
		subcircuits:  make(map[string]*netlist.Subcircuit),
	}
}

func (c *Circuit) Nodes() *NodeRegistry    { return c.nodes }
func (c *Circuit) Devices() []device.Device { return c.devices }

// AddGround marks a node name as part of the ground set.
func (c *Circuit) AddGround(name string) { c.nodes.AddGround(name) }

// DeleteGround removes a node name from the ground set.
func (c *Circuit) DeleteGround(name string) { c.nodes.RemoveGround(name) }

// ConnectNodes merges two node names into the same electrical node.
func (c *Circuit) ConnectNodes(a, b string) { c.nodes.Merge(a, b) }

// AddLabel records that node belongs to the given wire-label equivalence
// class; ProcessLabelConnections actually merges same-label nodes together,
// and mna.Build calls it automatically before every assembly pass, so
// callers don't have to remember to invoke it themselves.
func (c *Circuit) AddLabel(node, label string) {
	c.labels[label] = append(c.labels[label], node)
}

// ProcessLabelConnections merges every group of node names that share a
// label into one electrical node.
func (c *Circuit) ProcessLabelConnections() {
	for _, names := range c.labels {
		for i := 1; i < len(names); i++ {
			c.nodes.Merge(names[0], names[i])
		}
	}
}

// DefineSubcircuit registers a reusable subcircuit template.
func (c *Circuit) DefineSubcircuit(def *netlist.Subcircuit) {
	c.subcircuits[def.Name] = def
}

// AddComponent resolves an Element's node names against the registry,
// builds its Device, and inserts it in netlist order. Component names must
// be unique within the circuit.
func (c *Circuit) AddComponent(elem netlist.Element, models map[string]map[string]float64) error {
	if _, exists := c.deviceByName[elem.Name]; exists {
		return errs.Validation(fmt.Sprintf("component %s already exists", elem.Name), nil)
	}

	dev, err := netlist.CreateDevice(elem, c.nodes.ID, models)
	if err != nil {
		return err
	}

	c.devices = append(c.devices, dev)
	c.deviceByName[elem.Name] = dev
	return nil
}

// ExpandSubcircuit instantiates defName under instanceName, connecting its
// ports to the given node names in order, and returns the fully qualified
// elements ready to be added with AddComponent. Internal (non-port) node
// names are prefixed with "instanceName_" and every component's own name
// with "instanceName." to keep them private to this instance.
func (c *Circuit) ExpandSubcircuit(instanceName, defName string, connections []string) ([]netlist.Element, error) {
	def, ok := c.subcircuits[defName]
	if !ok {
		return nil, errs.Reference(fmt.Sprintf("subcircuit %s: undefined", defName), nil)
	}
	if len(connections) != len(def.Ports) {
		return nil, errs.Validation(
			fmt.Sprintf("subcircuit %s: expected %d connections, got %d", defName, len(def.Ports), len(connections)), nil)
	}

	portMap := make(map[string]string, len(def.Ports))
	for i, port := range def.Ports {
		portMap[port] = connections[i]
	}

	mangle := func(node string) string {
		if mapped, ok := portMap[node]; ok {
			return mapped
		}
		if node == "0" || node == "gnd" {
			return node
		}
		return instanceName + "_" + node
	}

	expanded := make([]netlist.Element, len(def.Elements))
	for i, e := range def.Elements {
		ne := e
		ne.Name = instanceName + "." + e.Name
		ne.Nodes = mapNodes(e.Nodes, mangle)
		ne.Ctrl = mapNodes(e.Ctrl, mangle)
		if ne.CtrlName != "" {
			ne.CtrlName = instanceName + "." + e.CtrlName
		}
		expanded[i] = ne
	}
	return expanded, nil
}

func mapNodes(nodes []string, mangle func(string) string) []string {
	if nodes == nil {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = mangle(n)
	}
	return out
}

// DeleteComponent removes a component by name.
func (c *Circuit) DeleteComponent(name string) error {
	dev, ok := c.deviceByName[name]
	if !ok {
		return errs.Reference(fmt.Sprintf("component %s not found", name), nil)
	}
	delete(c.deviceByName, name)
	for i, d := range c.devices {
		if d == dev {
			c.devices = append(c.devices[:i], c.devices[i+1:]...)
			break
		}
	}
	return nil
}

// HasNode reports whether name has been registered as a node.
func (c *Circuit) HasNode(name string) bool {
	_, ok := c.nodes.Lookup(name)
	return ok
}

// ListNodes returns every registered node name.
func (c *Circuit) ListNodes() []string { return c.nodes.Names() }

// ListComponents returns the component names in netlist order.
func (c *Circuit) ListComponents() []string {
	names := make([]string, len(c.devices))
	for i, d := range c.devices {
		names[i] = d.Name()
	}
	return names
}

// Component looks up a device by name.
func (c *Circuit) Component(name string) (device.Device, bool) {
	d, ok := c.deviceByName[name]
	return d, ok
}

// HasGroundReference reports whether any device terminal actually touches
// the ground set. A circuit that grounds a node nobody connects to is, for
// analysis purposes, still floating.
func (c *Circuit) HasGroundReference() bool {
	for _, d := range c.devices {
		n1, n2 := d.Terminals()
		if c.nodes.IsGround(n1) || c.nodes.IsGround(n2) {
			return true
		}
	}
	return false
}

// HasACSource reports whether the circuit contains at least one
// ACVoltageSource, the precondition for running an AC sweep.
func (c *Circuit) HasACSource() bool {
	for _, d := range c.devices {
		if d.TypeKey() == "AC" {
			return true
		}
	}
	return false
}
