package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechemotion/pkg/cli"
	"github.com/haivivi/speechemotion/pkg/emotion"
)

// PredictRequest is the request file format of 'predict -f'.
type PredictRequest struct {
	File    string `json:"file" yaml:"file"`
	Model   string `json:"model" yaml:"model"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

var (
	predictModel      string
	predictRequest    string
	predictFormat     string
	predictOutputFile string
	predictTimeout    time.Duration
)

var predictCmd = &cobra.Command{
	Use:   "predict [file]",
	Short: "Classify the emotion of a WAV recording",
	Long: `Classify the emotion of a WAV recording.

The recording is resampled to 22050 Hz, cut or padded to 2.5 seconds and
turned into 20 MFCCs per frame before it is fed to the classifier.

Request file (YAML or JSON, "-" for stdin):

  file: clip.wav
  model: emotion_recognition_model_C
  timeout: 30s

Exit status: 2 extraction failure, 3 unknown model, 4 model load failure,
5 decoding failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictModel, "model", "m", "", "model identifier (see 'speechemotion models')")
	predictCmd.Flags().StringVarP(&predictRequest, "file", "f", "", "request file (YAML or JSON)")
	predictCmd.Flags().StringVarP(&predictFormat, "output", "o", "yaml", "output format: yaml, json, table, raw")
	predictCmd.Flags().StringVar(&predictOutputFile, "output-file", "", "write output to file instead of stdout")
	predictCmd.Flags().DurationVar(&predictTimeout, "timeout", 0, "deadline for the whole prediction (0 = none)")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(predictFormat, cli.FormatYAML, cli.FormatJSON, cli.FormatTable, cli.FormatRaw)
	if err != nil {
		return err
	}
	req, err := buildPredictRequest(args)
	if err != nil {
		return err
	}

	// Reject unknown identifiers before the runtime is initialized.
	id := emotion.ModelID(req.Model)
	if _, err := emotion.Resolve(id); err != nil {
		return err
	}

	timeout := predictTimeout
	if req.Timeout != "" && !cmd.Flags().Changed("timeout") {
		if timeout, err = time.ParseDuration(req.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", req.Timeout, err)
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	predictor, closeFn, err := openPredictor()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := predictor.Predict(ctx, req.File, id)
	if err != nil {
		return err
	}
	return cli.Output(newPredictView(res), cli.OutputOptions{
		Format: format,
		File:   predictOutputFile,
	})
}

// buildPredictRequest merges the request file with positional arguments and
// flags; flags win.
func buildPredictRequest(args []string) (*PredictRequest, error) {
	var req PredictRequest
	if predictRequest != "" {
		if err := cli.LoadRequest(predictRequest, &req); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		req.File = args[0]
	}
	if predictModel != "" {
		req.Model = predictModel
	}
	if req.File == "" {
		return nil, fmt.Errorf("no audio file given; pass a path or use -f")
	}
	if req.Model == "" {
		return nil, fmt.Errorf("no model given; use -m %s or -m %s", emotion.ModelRAVDESS, emotion.ModelCREMAD)
	}
	return &req, nil
}

// predictView is the printed form of a prediction.
type predictView struct {
	ID      string      `json:"id" yaml:"id"`
	File    string      `json:"file" yaml:"file"`
	Model   string      `json:"model" yaml:"model"`
	Scheme  string      `json:"scheme" yaml:"scheme"`
	Label   string      `json:"label" yaml:"label"`
	Index   int         `json:"index" yaml:"index"`
	Scores  []scoreView `json:"scores" yaml:"scores"`
	Frames  int         `json:"frames" yaml:"frames"`
	Timings timingsView `json:"timings" yaml:"timings"`
}

type scoreView struct {
	Label string  `json:"label" yaml:"label"`
	Score float32 `json:"score" yaml:"score"`
}

type timingsView struct {
	Load    string `json:"load" yaml:"load"`
	Extract string `json:"extract" yaml:"extract"`
	Decode  string `json:"decode" yaml:"decode"`
	Total   string `json:"total" yaml:"total"`
}

func newPredictView(r *emotion.Result) *predictView {
	m, _ := emotion.Resolve(r.Model)
	v := &predictView{
		ID:     r.ID,
		File:   r.File,
		Model:  string(r.Model),
		Scheme: r.Scheme,
		Label:  r.Label,
		Index:  r.Index,
		Frames: r.Frames,
		Timings: timingsView{
			Load:    cli.FormatDuration(r.Timings.Load),
			Extract: cli.FormatDuration(r.Timings.Extract),
			Decode:  cli.FormatDuration(r.Timings.Decode),
			Total:   cli.FormatDuration(r.Timings.Total()),
		},
	}
	for i, s := range r.Scores {
		label, _ := m.Scheme.Label(i)
		v.Scores = append(v.Scores, scoreView{Label: label, Score: s})
	}
	return v
}

// Raw implements cli.Rawer.
func (v *predictView) Raw() string { return v.Label }

// Panel implements cli.Paneler.
func (v *predictView) Panel() cli.Panel {
	scores := make([]float32, len(v.Scores))
	for i, s := range v.Scores {
		scores[i] = s.Score
	}
	pct := cli.FormatScores(scores)

	scoreRows := make([]cli.Row, len(v.Scores))
	for i, s := range v.Scores {
		mark := ""
		if i == v.Index {
			mark = "  ◀"
		}
		scoreRows[i] = cli.Row{Key: s.Label, Value: pct[i] + mark}
	}

	return cli.Panel{
		Title:  "Emotion: " + v.Label,
		Status: v.Scheme,
		Sections: []cli.Section{
			{Label: "Input", Rows: []cli.Row{
				{Key: "file", Value: v.File},
				{Key: "model", Value: v.Model},
				{Key: "frames", Value: strconv.Itoa(v.Frames)},
				{Key: "id", Value: v.ID},
			}},
			{Label: "Scores", Rows: scoreRows},
			{Label: "Timings", Rows: []cli.Row{
				{Key: "load", Value: v.Timings.Load},
				{Key: "extract", Value: v.Timings.Extract},
				{Key: "decode", Value: v.Timings.Decode},
				{Key: "total", Value: v.Timings.Total},
			}},
		},
	}
}
