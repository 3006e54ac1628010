package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechemotion/pkg/cli"
	"github.com/haivivi/speechemotion/pkg/emotion"
)

var (
	featuresFormat     string
	featuresOutputFile string
)

var featuresCmd = &cobra.Command{
	Use:   "features <file>",
	Short: "Dump the MFCC feature matrix of a WAV recording",
	Long: `Dump the (frames, 20) MFCC matrix that 'predict' feeds to the classifier.

MessagePack output is binary and needs --output-file.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().StringVarP(&featuresFormat, "output", "o", "yaml", "output format: yaml, json, msgpack")
	featuresCmd.Flags().StringVar(&featuresOutputFile, "output-file", "", "write output to file instead of stdout")
	rootCmd.AddCommand(featuresCmd)
}

// featureDump is the printed form of a feature matrix.
type featureDump struct {
	File         string      `json:"file" yaml:"file"`
	SampleRate   int         `json:"sample_rate" yaml:"sample_rate"`
	Samples      int         `json:"samples" yaml:"samples"`
	Frames       int         `json:"frames" yaml:"frames"`
	Coefficients int         `json:"coefficients" yaml:"coefficients"`
	Matrix       [][]float32 `json:"matrix" yaml:"matrix"`
}

func runFeatures(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(featuresFormat, cli.FormatYAML, cli.FormatJSON, cli.FormatMsgpack)
	if err != nil {
		return err
	}
	extractor, err := emotion.NewExtractor()
	if err != nil {
		return err
	}
	m, err := extractor.Extract(args[0])
	if err != nil {
		return err
	}

	dump := featureDump{
		File:         args[0],
		SampleRate:   extractor.SampleRate(),
		Samples:      extractor.SampleLength(),
		Frames:       m.Frames(),
		Coefficients: m.Coefficients(),
		Matrix:       m,
	}
	if err := cli.Output(dump, cli.OutputOptions{Format: format, File: featuresOutputFile}); err != nil {
		return err
	}
	if format.Binary() {
		if info, err := os.Stat(featuresOutputFile); err == nil {
			cli.PrintSuccess("wrote %d x %d features (%s) to %s",
				dump.Frames, dump.Coefficients, cli.FormatBytes(info.Size()), featuresOutputFile)
		}
	}
	return nil
}
