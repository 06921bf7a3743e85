package netlist

import (
	"fmt"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/device"
)

// CreateDevice builds the Device instance an Element describes. resolve
// maps a node name to its registry id, creating the node if it has not
// been seen before.
func CreateDevice(elem Element, resolve func(string) int, models map[string]map[string]float64) (device.Device, error) {
	if len(elem.Nodes) != 2 && elem.Type != "X" {
		return nil, errs.Topology(fmt.Sprintf("%s %s: requires exactly two terminals", elem.Type, elem.Name), nil)
	}

	switch elem.Type {
	case "R":
		if elem.Value <= 0 {
			return nil, errs.Validation(fmt.Sprintf("resistor %s: value must be positive", elem.Name), nil)
		}
		return device.NewResistor(elem.Name, resolve(elem.Nodes[0]), resolve(elem.Nodes[1]), elem.Value), nil

	case "C":
		if elem.Value <= 0 {
			return nil, errs.Validation(fmt.Sprintf("capacitor %s: value must be positive", elem.Name), nil)
		}
		return device.NewCapacitor(elem.Name, resolve(elem.Nodes[0]), resolve(elem.Nodes[1]), elem.Value), nil

	case "L":
		if elem.Value <= 0 {
			return nil, errs.Validation(fmt.Sprintf("inductor %s: value must be positive", elem.Name), nil)
		}
		return device.NewInductor(elem.Name, resolve(elem.Nodes[0]), resolve(elem.Nodes[1]), elem.Value), nil

	case "D":
		d := device.NewDiode(elem.Name, resolve(elem.Nodes[0]), resolve(elem.Nodes[1]))
		if elem.ModelName != "" {
			params, ok := models[elem.ModelName]
			if !ok {
				return nil, errs.Reference(fmt.Sprintf("diode %s: undefined model %s", elem.Name, elem.ModelName), nil)
			}
			if is, ok := params["is"]; ok {
				d.Is = is
			}
			if n, ok := params["n"]; ok {
				d.Eta = n
			}
		}
		return d, nil

	case "V":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		switch elem.Kind {
		case "sin":
			return device.NewSinVoltageSource(elem.Name, n1, n2, elem.Sin[0], elem.Sin[1], elem.Sin[2], elem.Sin[3]), nil
		default:
			return device.NewDCVoltageSource(elem.Name, n1, n2, elem.Value), nil
		}

	case "AC":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		return device.NewACVoltageSource(elem.Name, n1, n2, elem.Value), nil

	case "I":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		switch elem.Kind {
		case "sin":
			return device.NewSinCurrentSource(elem.Name, n1, n2, elem.Sin[0], elem.Sin[1], elem.Sin[2], elem.Sin[3]), nil
		default:
			return device.NewDCCurrentSource(elem.Name, n1, n2, elem.Value), nil
		}

	case "E":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		c1, c2 := resolve(elem.Ctrl[0]), resolve(elem.Ctrl[1])
		return device.NewVCVS(elem.Name, n1, n2, c1, c2, elem.Value), nil

	case "G":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		c1, c2 := resolve(elem.Ctrl[0]), resolve(elem.Ctrl[1])
		return device.NewVCCS(elem.Name, n1, n2, c1, c2, elem.Value), nil

	case "H":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		return device.NewCCVS(elem.Name, n1, n2, elem.CtrlName, elem.Value), nil

	case "F":
		n1, n2 := resolve(elem.Nodes[0]), resolve(elem.Nodes[1])
		return device.NewCCCS(elem.Name, n1, n2, elem.CtrlName, elem.Value), nil
	}

	return nil, errs.Validation(fmt.Sprintf("unsupported device type %q", elem.Type), nil)
}
