package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	mosaic "github.com/atilaykosker/Mosaic"
)

var (
	newOutput  string
	newPackage string
	newForce   bool
)

var newCmd = &cobra.Command{
	Use:   "new <tag-name>",
	Short: "Scaffold a component definition file",
	Long: `Generate a Go source file defining a Mosaic component.

The tag name must follow the custom-element rule: lowercase letters,
digits, and at least one hyphen. The generated file registers the
component with the default runtime and renders a placeholder view.

Examples:
  mosaic new my-counter
  mosaic new user-card --output ./components
  mosaic new nav-bar --package ui --force`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVarP(&newOutput, "output", "o", ".", "Output directory")
	newCmd.Flags().StringVarP(&newPackage, "package", "p", "components", "Package name for the generated file")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing file")
}

var scaffoldTemplate = template.Must(template.New("component").Parse(`package {{.Package}}

import (
	mosaic "github.com/atilaykosker/Mosaic"
)

// {{.Identifier}} registers the <{{.Tag}}> component with the default
// runtime. Create instances with {{.Identifier}}.New().
var {{.Identifier}} = mosaic.MustDefine(mosaic.Options{
	Name: "{{.Tag}}",
	Data: map[string]interface{}{
		"label": "{{.Tag}}",
	},
	View: func(c *mosaic.Component) mosaic.View {
		label, _ := c.Get("label")
		return mosaic.NewView(
			[]string{"<div class=\"{{.Tag}}\">", "</div>"},
			label,
		)
	},
})
`))

func runNew(cmd *cobra.Command, args []string) error {
	name, err := mosaic.ValidateName(args[0])
	if err != nil {
		return err
	}

	filename := strings.ReplaceAll(name, "-", "_") + ".go"
	path := filepath.Join(newOutput, filename)

	if !newForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	source, err := renderScaffold(newPackage, name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(newOutput, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return fmt.Errorf("writing scaffold: %w", err)
	}

	cliLogger.Debug(cmd.Context(), "component scaffolded", "name", name, "path", path)
	fmt.Printf("Created %s defining <%s>\n", path, name)
	return nil
}

func renderScaffold(pkg, tag string) ([]byte, error) {
	var buf bytes.Buffer
	err := scaffoldTemplate.Execute(&buf, map[string]string{
		"Package":    pkg,
		"Tag":        tag,
		"Identifier": goIdentifier(tag),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering scaffold: %w", err)
	}
	return buf.Bytes(), nil
}

// goIdentifier turns a tag name into an exported Go identifier:
// "user-card" becomes "UserCard".
func goIdentifier(name string) string {
	title := cases.Title(language.English)
	parts := strings.Split(name, "-")
	for i, part := range parts {
		parts[i] = title.String(part)
	}
	return strings.Join(parts, "")
}
