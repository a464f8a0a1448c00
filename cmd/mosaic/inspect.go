package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/internal/config"
	"github.com/atilaykosker/Mosaic/markup"
	"github.com/atilaykosker/Mosaic/memory"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <segment>...",
	Short: "Compile template segments and show the discovered slots",
	Long: `Compile a template's static segments and print the marked-up HTML
together with the slot table the engine would discover.

Each argument is one static segment; the gaps between arguments are the
template's dynamic slots. Elements whose tag carries a hyphen are treated
as component tags, matching the runtime's naming rule.

Examples:
  mosaic inspect '<h1 class="' '">' '</h1>'
  mosaic inspect '<ul>' '</ul>' --output json
  mosaic inspect '<my-widget theme="' '"></my-widget>' -o yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	inspectCmd.Flags().Bool("show-paths", true, "Include slot paths in table output")
	viper.BindPFlag("markup.output", inspectCmd.Flags().Lookup("output"))
	viper.BindPFlag("markup.show_paths", inspectCmd.Flags().Lookup("show-paths"))
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	compiled := markup.Compile(args)
	frag, err := dom.ParseFragment(compiled)
	if err != nil {
		return fmt.Errorf("parsing compiled markup: %w", err)
	}
	slots := memory.Discover(frag, componentTag)

	cliLogger.Debug(cmd.Context(), "template inspected",
		"segments", len(args), "slots", len(slots))

	switch cfg.Markup.Output {
	case "json":
		return writeInspectJSON(os.Stdout, compiled, slots)
	case "yaml":
		return writeInspectYAML(os.Stdout, compiled, slots)
	case "table":
		return writeInspectTable(os.Stdout, compiled, slots, cfg.Markup.ShowPaths)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", cfg.Markup.Output)
	}
}

// componentTag mirrors the runtime's naming rule. The inspector holds no
// registry, so tag shape is the only signal.
func componentTag(tag string) bool {
	return strings.Contains(tag, "-")
}

type slotReport struct {
	Index          int    `json:"index" yaml:"index"`
	Kind           string `json:"kind" yaml:"kind"`
	Path           []int  `json:"path" yaml:"path"`
	Attr           string `json:"attr,omitempty" yaml:"attr,omitempty"`
	ComponentOwned bool   `json:"component_owned" yaml:"component_owned"`
}

type inspectReport struct {
	Markup string       `json:"markup" yaml:"markup"`
	Slots  []slotReport `json:"slots" yaml:"slots"`
}

func buildReport(compiled string, slots []*memory.Memory) inspectReport {
	report := inspectReport{
		Markup: compiled,
		Slots:  make([]slotReport, len(slots)),
	}
	for i, mem := range slots {
		report.Slots[i] = slotReport{
			Index:          i,
			Kind:           mem.Kind.String(),
			Path:           mem.Path,
			Attr:           mem.Attr,
			ComponentOwned: mem.OwnerIsComponent,
		}
	}
	return report
}

func writeInspectJSON(w io.Writer, compiled string, slots []*memory.Memory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReport(compiled, slots))
}

func writeInspectYAML(w io.Writer, compiled string, slots []*memory.Memory) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(buildReport(compiled, slots))
}

func writeInspectTable(w io.Writer, compiled string, slots []*memory.Memory, showPaths bool) error {
	fmt.Fprintf(w, "Markup:\n  %s\n\n", compiled)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	header := "#\tKIND\tATTR\tOWNER"
	separator := "-\t----\t----\t-----"
	if showPaths {
		header += "\tPATH"
		separator += "\t----"
	}
	fmt.Fprintln(tw, header)
	fmt.Fprintln(tw, separator)

	for i, mem := range slots {
		attr := mem.Attr
		if attr == "" {
			attr = "-"
		}
		owner := "element"
		if mem.OwnerIsComponent {
			owner = "component"
		}
		row := fmt.Sprintf("%d\t%s\t%s\t%s", i, mem.Kind, attr, owner)
		if showPaths {
			row += "\t" + mosaicerrors.PathString(mem.Path)
		}
		fmt.Fprintln(tw, row)
	}

	fmt.Fprintf(tw, "\nTotal: %d slots\n", len(slots))
	return nil
}
