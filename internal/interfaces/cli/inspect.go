package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/simheat/internal/application/plotting"
)

// NewInspectCmd creates the inspect command and its similarity and pattern
// subcommands.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Parse a report and print what was read",
	}

	var matrix bool
	simCmd := &cobra.Command{
		Use:   "similarity <file>",
		Short: "Summarise a similarity report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectSimilarity(cmd, args[0], matrix)
		},
	}
	simCmd.Flags().BoolVar(&matrix, "matrix", false, "print the full matrix")

	patCmd := &cobra.Command{
		Use:   "pattern <file>",
		Short: "List the atoms of a pattern report and their name abundance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspectPattern(cmd, args[0])
		},
	}

	cmd.AddCommand(simCmd, patCmd)
	return cmd
}

func runInspectSimilarity(cmd *cobra.Command, path string, matrix bool) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc, err := plotting.NewService(cliCtx.Config, plotting.Dependencies{Logger: cliCtx.Logger})
	if err != nil {
		return err
	}
	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()

	sum, err := svc.InspectSimilarity(ctx, path)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		if !matrix {
			sum.Matrix = nil
		}
		return printJSON(cmd, sum)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable([]string{"File", "Atoms", "Missing", "Min", "Max", "Symmetric"}, [][]string{{
		sum.Path,
		strconv.Itoa(sum.Atoms),
		strconv.Itoa(sum.Missing),
		formatScore(sum.Min),
		formatScore(sum.Max),
		strconv.FormatBool(sum.Symmetric),
	}}))
	if matrix {
		fmt.Fprint(out, formatMatrix(sum, cliCtx.Config.Render.Threshold, cliCtx.Config.Render.ValueFormat))
	}
	return nil
}

// formatMatrix prints the matrix with values at or above threshold
// highlighted.
func formatMatrix(sum *plotting.SimilaritySummary, threshold float64, valueFormat string) string {
	n := sum.Atoms
	headers := make([]string, n+1)
	headers[0] = "i\\j"
	for j := 0; j < n; j++ {
		headers[j+1] = strconv.Itoa(j + 1)
	}
	rows := make([][]string, n)
	for i, values := range sum.Matrix.Rows() {
		row := make([]string, n+1)
		row[0] = strconv.Itoa(i + 1)
		for j, v := range values {
			cell := fmt.Sprintf(valueFormat, v)
			if v >= threshold {
				cell = color.MagentaString(cell)
			}
			row[j+1] = cell
		}
		rows[i] = row
	}
	return FormatTable(headers, rows)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func runInspectPattern(cmd *cobra.Command, path string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc, err := plotting.NewService(cliCtx.Config, plotting.Dependencies{Logger: cliCtx.Logger})
	if err != nil {
		return err
	}
	ctx, cancel := operationContext(cmd, cliCtx)
	defer cancel()

	sum, err := svc.InspectPattern(ctx, path)
	if err != nil {
		return err
	}
	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, sum)
	}

	atoms := make([][]string, 0, sum.Atoms)
	for _, r := range sum.Labels.Records {
		name := r.Name
		if name == "" {
			name = color.YellowString("(unnamed)")
		}
		atoms = append(atoms, []string{strconv.Itoa(r.Index + 1), r.Element, name, r.Pattern})
	}
	abundance := make([][]string, 0, len(sum.Abundance))
	for _, nc := range sum.Abundance {
		abundance = append(abundance, []string{nc.Name, strconv.Itoa(nc.Count), fmt.Sprintf("%.1f%%", nc.Percent)})
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable([]string{"#", "Element", "Name", "Pattern"}, atoms))
	fmt.Fprintln(out)
	fmt.Fprint(out, FormatTable([]string{"Name", "Count", "Share"}, abundance))
	fmt.Fprintf(out, "\nTotal atoms: %d\n", sum.Atoms)
	return nil
}

//Personal.AI order the ending
