// Command spice loads a netlist file, runs whichever analysis directive it
// contains, and prints the requested result variables in engineering
// notation.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ardentwolf/spicesim/pkg/analysis"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/netlist"
	"github.com/ardentwolf/spicesim/pkg/result"
	"github.com/ardentwolf/spicesim/pkg/util"
	"github.com/spf13/cobra"
)

var varsFlag []string

var rootCmd = &cobra.Command{
	Use:   "spice <netlist-file>",
	Short: "Run the transient or AC analysis directive a netlist file contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpice,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&varsFlag, "vars", "p", nil,
		"result variables to print, e.g. V(out),I(R1) (default: every node voltage)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spice:", err)
		os.Exit(1)
	}
}

func runSpice(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading netlist: %w", err)
	}

	doc, err := netlist.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing netlist: %w", err)
	}

	ckt, err := circuit.FromDocument(doc)
	if err != nil {
		return fmt.Errorf("building circuit: %w", err)
	}

	vars := varsFlag
	if len(vars) == 0 {
		vars = defaultVars(ckt)
	}

	switch doc.Analysis {
	case netlist.AnalysisTran:
		tr, asm, err := analysis.RunTransient(context.Background(), ckt, doc.Tran.Start, doc.Tran.Stop, doc.Tran.MaxStep)
		if err != nil {
			if tr == nil {
				return fmt.Errorf("transient analysis: %w", err)
			}
			fmt.Fprintln(os.Stderr, "spice: transient analysis stopped early:", err)
		}
		printTable(result.ExtractTransient(ckt, asm, tr, vars), "t", "s")

	case netlist.AnalysisAC:
		ac, asm, err := analysis.RunAC(context.Background(), ckt, doc.AC.OmegaStart, doc.AC.OmegaStop, doc.AC.NPoints)
		if err != nil {
			return fmt.Errorf("ac analysis: %w", err)
		}
		printTable(result.ExtractAC(ckt, asm, ac, vars), "omega", "rad/s")

	default:
		solution, asm, err := analysis.OperatingPoint(ckt)
		if err != nil {
			return fmt.Errorf("operating point: %w", err)
		}
		printPoint(result.ExtractPoint(ckt, asm, solution, vars))
	}

	return nil
}

func defaultVars(c *circuit.Circuit) []string {
	var vars []string
	for _, name := range c.ListNodes() {
		if name == "0" {
			continue
		}
		vars = append(vars, fmt.Sprintf("V(%s)", name))
	}
	sort.Strings(vars)
	return vars
}

func printTable(t *result.Table, axisName, axisUnit string) {
	names := make([]string, 0, len(t.Series))
	for name := range t.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, x := range t.Axis {
		fmt.Printf("%-4s=%s  ", axisName, util.FormatValueFactor(x, axisUnit))
		for _, name := range names {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(t.Series[name][i], unitFor(name)))
		}
		fmt.Println()
	}
}

func printPoint(point map[string]float64) {
	names := make([]string, 0, len(point))
	for name := range point {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s = %s\n", name, util.FormatValueFactor(point[name], unitFor(name)))
	}
}

func unitFor(variable string) string {
	if len(variable) > 0 && variable[0] == 'I' {
		return "A"
	}
	return "V"
}
