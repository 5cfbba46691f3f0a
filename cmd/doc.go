package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridkit/internal/schemadoc"
)

var (
	docOutput   string
	docTitle    string
	docMarkdown bool
)

var docCmd = &cobra.Command{
	Use:   "doc <schema-file>",
	Short: "Generate documentation for a schema",
	Long: `doc renders a schema document as a self-contained HTML page describing
its columns, toolbar, pagination and selection behavior, and any nested
subtable schemas. With --markdown the intermediate markdown is emitted
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, issues, err := loadSchema(args)
		if err != nil {
			return err
		}
		for _, iss := range issues {
			fmt.Fprintf(cmd.ErrOrStderr(), "schema warning: %s\n", iss)
		}

		var out []byte
		if docMarkdown {
			out = []byte(schemadoc.Markdown(doc, docTitle))
		} else {
			out = schemadoc.Generate(doc, docTitle)
		}

		if docOutput == "" || docOutput == "-" {
			_, err := cmd.OutOrStdout().Write(out)
			return err
		}
		return os.WriteFile(docOutput, out, 0o644)
	},
}

func init() {
	docCmd.Flags().StringVarP(&docOutput, "out", "o", "", "output file (default stdout)")
	docCmd.Flags().StringVar(&docTitle, "title", "", "document title (default: schema id)")
	docCmd.Flags().BoolVar(&docMarkdown, "markdown", false, "emit markdown instead of HTML")
	rootCmd.AddCommand(docCmd)
}
