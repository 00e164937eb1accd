package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsariola/traverso"
	"github.com/vsariola/traverso/engine"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] FILE|DIR...",
	Short: "Mix raw audio files offline into a .wav or .raw file",
	Long: `Import raw files onto one track each, like play, and render the mix
without an audio device. The output format follows the extension of --output:
.raw writes headerless samples, anything else a .wav file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "mix.wav", "output file")
	exportCmd.Flags().Bool("pcm16", false, "write 16-bit integer samples instead of float32")
	exportCmd.Flags().String("start", "0s", "start of the rendered range, as a duration such as 1m30s")
	exportCmd.Flags().String("end", "", "end of the rendered range (default: end of the last clip)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()
	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	rate := cfg.Int("audio", "sample_rate", 44100)
	e := engine.New(cfg, traverso.RawFileProvider{Rate: rate}, logger)
	defer e.Close()
	if err := e.Import(files...); err != nil {
		return fmt.Errorf("importing: %w", err)
	}

	startStr, _ := cmd.Flags().GetString("start")
	start, err := traverso.ParseTimeRef(startStr)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end := e.Session().End()
	if endStr, _ := cmd.Flags().GetString("end"); endStr != "" {
		if end, err = traverso.ParseTimeRef(endStr); err != nil {
			return fmt.Errorf("--end: %w", err)
		}
	}
	mix, err := e.Bounce(start, end)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	pcm16, _ := cmd.Flags().GetBool("pcm16")
	var data []byte
	if strings.HasSuffix(strings.ToLower(output), ".raw") {
		data, err = traverso.Raw(mix, pcm16)
	} else {
		data, err = traverso.Wav(mix, rate, pcm16)
	}
	if err != nil {
		return fmt.Errorf("could not encode %v: %w", output, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}
	logger.Info("exported", "file", output, "length", end-start)
	return nil
}
