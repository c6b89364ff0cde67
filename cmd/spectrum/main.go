// Command spectrum plays an audio file through PortAudio and prints the
// visualizer bands in the terminal. It exercises the analysis tap and the
// analyser without a window.
package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/audio"
	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
)

var levels = []rune(" ▁▂▃▄▅▆▇█")

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		bands      int
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "spectrum <file>",
		Short:        "Play an audio file and print its frequency bands",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(debug || cfg.Debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if bands <= 0 {
				bands = cfg.Player.VisualizerBands
			}
			return run(cfg, args[0], bands, logger)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	cmd.Flags().IntVar(&bands, "bands", 0, "number of bands to print (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	return cmd
}

func run(cfg *config.Config, path string, bands int, logger *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	stream, format, err := audio.Decode(path, data)
	if err != nil {
		return err
	}
	defer stream.Close()

	logger.Debug("decoded",
		zap.String("file", path),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Int("channels", format.NumChannels),
		zap.Duration("length", format.SampleRate.D(stream.Len())))

	tap := audio.NewTap(cfg.Audio.FFTSize)
	analyzer := audio.NewAnalyzer(tap, cfg.Audio.FFTSize, cfg.Audio.Smoothing, cfg.Audio.MinDecibels, cfg.Audio.MaxDecibels)
	defer analyzer.Close()

	var (
		mu   sync.Mutex
		done = make(chan struct{})
		once sync.Once
	)
	source := beep.Seq(tap.Wrap(stream), beep.Callback(func() { once.Do(func() { close(done) }) }))

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	tmp := make([][2]float64, format.SampleRate.N(20*time.Millisecond))
	out, err := portaudio.OpenDefaultStream(0, 2, float64(format.SampleRate), len(tmp),
		func(out [][]float32) {
			mu.Lock()
			defer mu.Unlock()

			frames := min(len(out[0]), len(tmp))
			n, _ := source.Stream(tmp[:frames])
			for i := range frames {
				if i < n {
					out[0][i] = float32(tmp[i][0])
					out[1][i] = float32(tmp[i][1])
				} else {
					out[0][i], out[1][i] = 0, 0
				}
			}
		})
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer func() { _ = out.Close() }()

	vis := player.NewVisualizer(bands, time.Second/time.Duration(cfg.Player.FrameRate), player.Immediate,
		func() player.Analyser { return analyzer })
	vis.OnFrame(func(frame []float64) {
		fmt.Printf("\r%s", renderBands(frame))
	})

	if err := out.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	vis.Start()

	<-done
	vis.Stop()
	fmt.Println()

	if err := out.Stop(); err != nil {
		logger.Debug("stop output stream", zap.Error(err))
	}
	return nil
}

func renderBands(frame []float64) string {
	var b strings.Builder
	for _, v := range frame {
		idx := int(v * float64(len(levels)-1))
		idx = max(0, min(idx, len(levels)-1))
		b.WriteRune(levels[idx])
		b.WriteRune(levels[idx])
	}
	return b.String()
}
