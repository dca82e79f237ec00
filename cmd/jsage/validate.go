package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/types"
)

// readSource 返回内联文本，否则读取文件
func readSource(inline, path, what string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.NewInputError("cannot read " + what + " file").WithCause(err)
	}
	return string(data), nil
}

// parseSchema 解析 schema 文本并检查结构
func parseSchema(text string) (*schema.Schema, error) {
	s, err := schema.Parse([]byte(text))
	if err != nil {
		return nil, types.NewInvalidJSONError(err)
	}
	if err := s.Check(); err != nil {
		return nil, types.NewInputError("invalid schema: " + err.Error())
	}
	return s, nil
}

func (a *app) printResult(res schema.Result) error {
	if res.Valid {
		fmt.Fprintln(a.stdout, "✓ Validation passed")
		return nil
	}
	fmt.Fprintln(a.stderr, "✗ Validation failed")
	fmt.Fprintln(a.stderr, "Errors:")
	for i, msg := range res.Errors {
		fmt.Fprintf(a.stderr, "  %d. %s\n", i+1, msg)
	}
	return errValidationFailed
}

func (a *app) validateCmd() *cobra.Command {
	var dataFile, dataString, schemaFile, schemaString string
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Validate JSON data against a schema",
		Example: `  jsage validate -d user.json -s user.schema.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readSource(dataString, dataFile, "data")
			if err != nil {
				return err
			}
			schemaText, err := readSource(schemaString, schemaFile, "schema")
			if err != nil {
				return err
			}
			if data == "" || schemaText == "" {
				return types.NewInputError("both data and schema must be provided")
			}

			facade, logger, err := a.remoteFacade()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			s, err := parseSchema(schemaText)
			if err != nil {
				return err
			}
			res, err := facade.ValidateJSON(data, s)
			if err != nil {
				return err
			}
			return a.printResult(res)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&dataFile, "data", "d", "", "path to the JSON data file")
	fl.StringVar(&dataString, "data-string", "", "JSON data given inline")
	fl.StringVarP(&schemaFile, "schema", "s", "", "path to the schema file")
	fl.StringVar(&schemaString, "schema-string", "", "schema given inline")
	return cmd
}

// checkCmd 只做元校验，不访问远程服务，因此不要求凭证
func (a *app) checkCmd() *cobra.Command {
	var schemaFile, schemaString string
	var recursive bool
	cmd := &cobra.Command{
		Use:   "check [schema-file]",
		Short: "Check that a document is a well-formed schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && schemaFile == "" {
				schemaFile = args[0]
			}
			text, err := readSource(schemaString, schemaFile, "schema")
			if err != nil {
				return err
			}
			if text == "" {
				return types.NewInputError("a schema must be provided")
			}

			cfg, _, err := a.load(false)
			if err != nil {
				return err
			}
			opts := schema.ValidatorOptions{Recursive: cfg.Enhance.RecursiveValidator}
			if cmd.Flags().Changed("recursive") {
				opts.Recursive = recursive
			}
			return a.printResult(schema.ValidateSchemaWith(text, opts))
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&schemaFile, "schema", "s", "", "path to the schema file")
	fl.StringVar(&schemaString, "schema-string", "", "schema given inline")
	fl.BoolVar(&recursive, "recursive", false, "also check nested properties and items")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "jsage %s\n", Version)
			fmt.Fprintf(a.stdout, "  build time: %s\n", BuildTime)
			fmt.Fprintf(a.stdout, "  git commit: %s\n", GitCommit)
		},
	}
}
