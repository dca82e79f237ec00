package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BaSui01/jsonsage/pipeline"
	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/types"
)

type generateFlags struct {
	description   string
	file          string
	output        string
	title         string
	required      bool
	noAdditional  bool
	noExamples    bool
	noEnhancement bool
}

func (a *app) generateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a JSON Schema from a description or an example file",
		Example: `  jsage generate -d "an invoice with line items"
  jsage generate -f order.json -o order.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.description, "description", "d", "", "natural-language description of the data")
	fl.StringVarP(&f.file, "file", "f", "", "path to an example JSON file")
	fl.StringVarP(&f.output, "output", "o", "", "write the schema to this file instead of stdout")
	fl.StringVar(&f.title, "title", "", "schema title (description mode)")
	fl.BoolVar(&f.required, "required", false, "mark every top-level property as required (description mode)")
	fl.BoolVar(&f.noAdditional, "no-additional-properties", false, "forbid undeclared properties (description mode)")
	fl.BoolVar(&f.noExamples, "no-examples", false, "do not record example values (file mode)")
	fl.BoolVar(&f.noEnhancement, "no-enhance", false, "skip remote enhancement (file mode)")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, f generateFlags) error {
	if f.description == "" && f.file == "" {
		return types.NewInputError("either --description or --file must be provided")
	}

	facade, logger, err := a.remoteFacade()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var out *schema.Schema
	if f.description != "" {
		opts := pipeline.GenerateOptions{Title: f.title, RequireAll: f.required}
		if f.noAdditional {
			no := false
			opts.AdditionalProperties = &no
		}
		out, err = facade.GenerateSchema(cmd.Context(), f.description, opts)
	} else {
		var data []byte
		data, err = os.ReadFile(f.file)
		if err != nil {
			return types.NewInputError("cannot read example file").WithCause(err)
		}
		out, err = facade.ConvertJSONToSchema(cmd.Context(), string(data), pipeline.ConvertOptions{
			IncludeExamples: !f.noExamples,
			Enhance:         !f.noEnhancement,
		})
	}
	if err != nil {
		return err
	}

	text, err := out.MarshalIndent()
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}
	if f.output == "" {
		fmt.Fprintln(a.stdout, string(text))
		return nil
	}
	if err := os.WriteFile(f.output, append(text, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	fmt.Fprintf(a.stdout, "Schema has been saved to %s\n", f.output)
	return nil
}
