// Package netlist turns SPICE-style netlist text into Element records and
// directive data, independent of how those records get wired into a
// circuit graph.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ardentwolf/spicesim/internal/errs"
)

type AnalysisKind int

const (
	AnalysisNone AnalysisKind = iota
	AnalysisTran
	AnalysisAC
)

// Element is one parsed netlist line: a device instance with unresolved
// (string) node names, or a subcircuit instance line (Type "X").
type Element struct {
	Type      string
	Name      string
	Nodes     []string // primary terminals
	Ctrl      []string // VCVS/VCCS controlling terminals
	CtrlName  string   // CCVS/CCCS controlling element name
	Value     float64
	Kind      string // "dc" or "sin" for V/I sources
	Sin       [4]float64
	ModelName string
	SubcktDef string // for Type == "X": the subcircuit definition name
}

// Subcircuit is a .subckt ... .ends block: a reusable template of elements
// whose Nodes may reference the block's own port names or private internal
// node names.
type Subcircuit struct {
	Name     string
	Ports    []string
	Elements []Element
}

// Document is the full parsed netlist: elements in file order, any
// directives encountered, and subcircuit definitions collected along the
// way.
type Document struct {
	Title       string
	Elements    []Element
	Subcircuits map[string]*Subcircuit
	ModelParams map[string]map[string]float64
	Grounds     []string
	Connects    [][2]string

	Analysis AnalysisKind
	Tran     struct {
		Stop, Start, MaxStep float64
	}
	AC struct {
		OmegaStart, OmegaStop float64
		NPoints               int
	}
}

var unitSuffix = map[string]float64{
	"meg": 1e6,
	"t":   1e12,
	"g":   1e9,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)([A-Za-z]*)$`)

// ParseValue parses a SPICE numeric literal with an optional unit suffix.
// The suffix is matched case-insensitively against meg/k/m/u/n (plus the
// teacher's wider t/g/p/f set); a trailing letter run that isn't a
// recognized suffix is left unscaled and returned as the bare numeric
// prefix, rather than rejected.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := valuePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, errs.Validation(fmt.Sprintf("invalid numeric value %q", s), nil)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errs.Validation(fmt.Sprintf("invalid numeric value %q", s), err)
	}
	if mult, ok := unitSuffix[strings.ToLower(m[2])]; ok {
		num *= mult
	}
	return num, nil
}

// Parse reads a full netlist, handling "+" line continuations and "*"
// comments (full-line or trailing).
func Parse(input string) (*Document, error) {
	doc := &Document{
		Subcircuits: make(map[string]*Subcircuit),
		ModelParams: make(map[string]map[string]float64),
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	if scanner.Scan() {
		doc.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var pending string
	var subckt *Subcircuit

	flush := func() error {
		if pending == "" {
			return nil
		}
		line := pending
		pending = ""
		return parseLine(doc, &subckt, line)
	}

	for scanner.Scan() {
		raw := scanner.Text()
		if idx := strings.Index(raw, "*"); idx >= 0 {
			raw = raw[:idx]
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "+") {
			pending += " " + strings.TrimSpace(line[1:])
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		pending = line
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if subckt != nil {
		return nil, errs.Validation(fmt.Sprintf("unterminated .subckt %s", subckt.Name), nil)
	}
	return doc, nil
}

func parseLine(doc *Document, subckt **Subcircuit, line string) error {
	line = regexp.MustCompile(`\s+`).ReplaceAllString(line, " ")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	if strings.HasPrefix(fields[0], ".") {
		return parseDirective(doc, subckt, fields)
	}

	elem, err := parseElementLine(fields)
	if err != nil {
		return err
	}

	if *subckt != nil {
		(*subckt).Elements = append((*subckt).Elements, *elem)
		return nil
	}
	doc.Elements = append(doc.Elements, *elem)
	return nil
}

func parseDirective(doc *Document, subckt **Subcircuit, fields []string) error {
	switch strings.ToLower(fields[0]) {
	case ".subckt":
		if len(fields) < 2 {
			return errs.Validation(".subckt requires a name", nil)
		}
		*subckt = &Subcircuit{Name: fields[1], Ports: fields[2:]}
		return nil

	case ".ends":
		if *subckt == nil {
			return errs.Validation(".ends without matching .subckt", nil)
		}
		doc.Subcircuits[(*subckt).Name] = *subckt
		*subckt = nil
		return nil

	case ".ground":
		doc.Grounds = append(doc.Grounds, fields[1:]...)
		return nil

	case ".connect":
		if len(fields) != 3 {
			return errs.Validation(".connect requires exactly two node names", nil)
		}
		doc.Connects = append(doc.Connects, [2]string{fields[1], fields[2]})
		return nil

	case ".model":
		return parseModelDirective(doc, fields[1:])

	case ".tran":
		return parseTranDirective(doc, fields[1:])

	case ".ac":
		return parseACDirective(doc, fields[1:])

	case ".op", ".end":
		return nil

	default:
		return errs.Validation(fmt.Sprintf("unsupported directive %s", fields[0]), nil)
	}
}

func parseModelDirective(doc *Document, fields []string) error {
	if len(fields) < 2 {
		return errs.Validation("insufficient .model parameters", nil)
	}
	name := fields[0]
	typeField := strings.TrimSuffix(strings.Join(fields[1:], " "), ")")
	typeField = strings.Replace(typeField, "(", " ", 1)
	parts := strings.Fields(typeField)
	if len(parts) == 0 {
		return errs.Validation("malformed .model line", nil)
	}
	if strings.ToUpper(parts[0]) != "D" {
		return errs.Validation(fmt.Sprintf("unsupported model type %s", parts[0]), nil)
	}

	params := make(map[string]float64)
	for _, pair := range parts[1:] {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		val, err := ParseValue(kv[1])
		if err != nil {
			return err
		}
		params[strings.ToLower(kv[0])] = val
	}
	doc.ModelParams[name] = params
	return nil
}

func parseTranDirective(doc *Document, fields []string) error {
	if len(fields) < 1 {
		return errs.Validation(".tran requires at least tstop", nil)
	}
	doc.Analysis = AnalysisTran
	var err error
	if doc.Tran.Stop, err = ParseValue(fields[0]); err != nil {
		return err
	}
	if len(fields) > 1 {
		if doc.Tran.Start, err = ParseValue(fields[1]); err != nil {
			return err
		}
	}
	if len(fields) > 2 {
		if doc.Tran.MaxStep, err = ParseValue(fields[2]); err != nil {
			return err
		}
	}
	if doc.Tran.MaxStep == 0 {
		doc.Tran.MaxStep = (doc.Tran.Stop - doc.Tran.Start) / 100
	}
	return nil
}

func parseACDirective(doc *Document, fields []string) error {
	if len(fields) < 3 {
		return errs.Validation(".ac requires start, stop angular frequency and a point count", nil)
	}
	doc.Analysis = AnalysisAC
	var err error
	if doc.AC.OmegaStart, err = ParseValue(fields[0]); err != nil {
		return err
	}
	if doc.AC.OmegaStop, err = ParseValue(fields[1]); err != nil {
		return err
	}
	n, err := ParseValue(fields[2])
	if err != nil {
		return err
	}
	doc.AC.NPoints = int(n)
	if doc.AC.NPoints < 2 {
		return errs.Validation(".ac point count must be at least 2", nil)
	}
	return nil
}

// elementType extracts the type keyword used for dispatch: every prefix is
// its first letter, except ACVoltageSource which dispatches on the literal
// two-character "AC" keyword.
func elementType(name string) string {
	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "AC") {
		return "AC"
	}
	return string(upper[0])
}

func parseElementLine(fields []string) (*Element, error) {
	if len(fields) < 3 {
		return nil, errs.Validation(fmt.Sprintf("invalid element line %q", strings.Join(fields, " ")), nil)
	}
	name := fields[0]
	typ := elementType(name)

	switch typ {
	case "R", "C", "L":
		if len(fields) != 4 {
			return nil, errs.Validation(fmt.Sprintf("%s requires exactly two nodes and a value", name), nil)
		}
		val, err := ParseValue(fields[3])
		if err != nil {
			return nil, err
		}
		return &Element{Type: typ, Name: name, Nodes: fields[1:3], Value: val}, nil

	case "D":
		elem := &Element{Type: "D", Name: name, Nodes: fields[1:3]}
		if len(fields) > 3 {
			elem.ModelName = fields[3]
		}
		return elem, nil

	case "V", "I", "AC":
		return parseSourceLine(typ, name, fields)

	case "E", "G":
		if len(fields) != 6 {
			return nil, errs.Validation(fmt.Sprintf("%s requires n1 n2 ctrl1 ctrl2 gain", name), nil)
		}
		gain, err := ParseValue(fields[5])
		if err != nil {
			return nil, err
		}
		return &Element{Type: typ, Name: name, Nodes: fields[1:3], Ctrl: fields[3:5], Value: gain}, nil

	case "H", "F":
		if len(fields) != 5 {
			return nil, errs.Validation(fmt.Sprintf("%s requires n1 n2 ctrlname gain", name), nil)
		}
		gain, err := ParseValue(fields[4])
		if err != nil {
			return nil, err
		}
		return &Element{Type: typ, Name: name, Nodes: fields[1:3], CtrlName: fields[3], Value: gain}, nil

	case "X":
		if len(fields) < 3 {
			return nil, errs.Validation(fmt.Sprintf("%s requires at least one node and a subcircuit name", name), nil)
		}
		return &Element{
			Type:      "X",
			Name:      name,
			Nodes:     fields[1 : len(fields)-1],
			SubcktDef: fields[len(fields)-1],
		}, nil

	default:
		return nil, errs.Validation(fmt.Sprintf("unsupported element type %q", typ), nil)
	}
}

func parseSourceLine(typ, name string, fields []string) (*Element, error) {
	if len(fields) < 4 {
		return nil, errs.Validation(fmt.Sprintf("%s requires at least two nodes and a value", name), nil)
	}
	elem := &Element{Type: typ, Name: name, Nodes: fields[1:3]}

	remaining := strings.Join(fields[3:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ")
	remaining = strings.ReplaceAll(remaining, ")", " ")
	words := strings.Fields(remaining)
	if len(words) == 0 {
		return nil, errs.Validation(fmt.Sprintf("%s missing excitation", name), nil)
	}

	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return nil, errs.Validation(fmt.Sprintf("%s missing DC value", name), nil)
		}
		val, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		elem.Kind = "dc"
		elem.Value = val

	case "SIN":
		if len(words) < 4 {
			return nil, errs.Validation(fmt.Sprintf("%s SIN requires offset, amplitude and frequency", name), nil)
		}
		vals := [4]float64{}
		for i := 1; i < 4; i++ {
			v, err := ParseValue(words[i])
			if err != nil {
				return nil, err
			}
			vals[i-1] = v
		}
		if len(words) > 4 {
			phase, err := ParseValue(words[4])
			if err != nil {
				return nil, err
			}
			vals[3] = phase
		}
		elem.Kind = "sin"
		elem.Sin = vals

	default:
		if typ == "AC" {
			val, err := ParseValue(words[0])
			if err != nil {
				return nil, err
			}
			elem.Kind = "dc"
			elem.Value = val
			break
		}
		return nil, errs.Validation(fmt.Sprintf("%s unsupported excitation %q", name, words[0]), nil)
	}

	return elem, nil
}
