package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechemotion/pkg/cli"
	"github.com/haivivi/speechemotion/pkg/emotion"
)

var (
	modelsFormat string
	modelsCheck  bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the recognized classifiers",
	Long: `List the recognized model identifiers with their label schemes.

With --check, the configured model store is asked whether each artifact
exists.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	modelsCmd.Flags().StringVarP(&modelsFormat, "output", "o", "table", "output format: yaml, json, table")
	modelsCmd.Flags().BoolVar(&modelsCheck, "check", false, "check that each artifact exists in the model store")
	rootCmd.AddCommand(modelsCmd)
}

type modelView struct {
	ID       string   `json:"id" yaml:"id"`
	Scheme   string   `json:"scheme" yaml:"scheme"`
	Classes  int      `json:"classes" yaml:"classes"`
	Labels   []string `json:"labels" yaml:"labels"`
	Artifact string   `json:"artifact" yaml:"artifact"`
	Present  *bool    `json:"present,omitempty" yaml:"present,omitempty"`
}

type modelList []modelView

// Panel implements cli.Paneler.
func (l modelList) Panel() cli.Panel {
	p := cli.Panel{Title: "Models", Status: strconv.Itoa(len(l))}
	for _, m := range l {
		rows := []cli.Row{
			{Key: "scheme", Value: m.Scheme},
			{Key: "classes", Value: strconv.Itoa(m.Classes)},
			{Key: "labels", Value: strings.Join(m.Labels, " ")},
			{Key: "artifact", Value: m.Artifact},
		}
		if m.Present != nil {
			status := "missing"
			if *m.Present {
				status = "present"
			}
			rows = append(rows, cli.Row{Key: "store", Value: status})
		}
		p.Sections = append(p.Sections, cli.Section{Label: m.ID, Rows: rows})
	}
	return p
}

func runModels(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(modelsFormat, cli.FormatYAML, cli.FormatJSON, cli.FormatTable)
	if err != nil {
		return err
	}

	ext := ".onnx"
	var exists func(ctx context.Context, path string) (bool, error)
	if modelsCheck {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.Models.Extension != "" {
			ext = cfg.Models.Extension
		}
		store, err := cfg.Store()
		if err != nil {
			return err
		}
		exists = store.Exists
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var list modelList
	for _, m := range emotion.Models() {
		v := modelView{
			ID:       string(m.ID),
			Scheme:   m.Scheme.Name(),
			Classes:  m.Scheme.Len(),
			Labels:   m.Scheme.Labels(),
			Artifact: m.Artifact + ext,
		}
		if exists != nil {
			ok, err := exists(ctx, v.Artifact)
			if err != nil {
				return err
			}
			v.Present = &ok
		}
		list = append(list, v)
	}
	return cli.Output(list, cli.OutputOptions{Format: format})
}
