// Package cli provides common output and input helpers for the speechemotion
// command-line tool.
//
// This package includes:
//   - Output formatting (YAML, JSON, MessagePack, table, raw)
//   - Panel rendering for the table format
//   - Request file loading (YAML/JSON, "-" for stdin)
//   - Human readable durations and sizes
//
// Example usage:
//
//	var req PredictRequest
//	if err := cli.LoadRequest("request.yaml", &req); err != nil {
//	    return err
//	}
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
