package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxpulse/voxpulse/audio"
	"github.com/voxpulse/voxpulse/config"
	"github.com/voxpulse/voxpulse/engine"
	"github.com/voxpulse/voxpulse/keyword"
	"github.com/voxpulse/voxpulse/logger"
	"github.com/voxpulse/voxpulse/osc"
	"github.com/voxpulse/voxpulse/stt"
	"github.com/voxpulse/voxpulse/trigger"
)

var (
	listenDevice    int
	listenInputFile string
	listenEngine    string
	listenOSCHost   string
	listenOSCPort   int
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Capture audio and emit keyword trigger events over OSC",
	RunE:  runListen,
}

func init() {
	listenCmd.Flags().IntVarP(&listenDevice, "device", "d", -1, "audio input device ID (default: system default)")
	listenCmd.Flags().StringVarP(&listenInputFile, "input", "i", "", "read audio from an MP3 file instead of a device")
	listenCmd.Flags().StringVarP(&listenEngine, "engine", "e", "", "transcription engine: whisper or speechkit")
	listenCmd.Flags().StringVar(&listenOSCHost, "osc-host", "", "OSC target host")
	listenCmd.Flags().IntVar(&listenOSCPort, "osc-port", 0, "OSC target port")

	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("device") {
		cfg.DeviceID = listenDevice
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = listenEngine
	}
	if cmd.Flags().Changed("osc-host") {
		cfg.OSCHost = listenOSCHost
	}
	if cmd.Flags().Changed("osc-port") {
		cfg.OSCPort = listenOSCPort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(debug || cfg.Debug)
	defer log.Sync()

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	sink, err := osc.NewClient(cfg.OSCHost, cfg.OSCPort)
	if err != nil {
		return fmt.Errorf("osc client: %w", err)
	}
	log.Infow("osc sink configured", "host", cfg.OSCHost, "port", cfg.OSCPort)

	transcriber, err := buildTranscriber(cfg, log)
	if err != nil {
		return err
	}
	defer transcriber.Close()

	audioCfg := audio.Config{
		SampleRate: float64(cfg.SampleRate),
		BlockSize:  cfg.BlockSize,
		Channels:   cfg.Channels,
		DeviceID:   cfg.DeviceID,
	}
	var streamer audio.Streamer
	if listenInputFile != "" {
		streamer = audio.NewFileStreamer(listenInputFile, audioCfg)
		log.Infow("reading audio from file", "path", listenInputFile)
	} else {
		streamer = audio.NewPortAudioStreamer(audioCfg)
	}

	scheduler := trigger.NewScheduler(sink, cfg.ResetDelay, cfg.TextAddress, log)

	pipeline, err := engine.New(engine.Config{
		SampleRate:    cfg.SampleRate,
		BlockSize:     cfg.BlockSize,
		WindowSeconds: cfg.WindowSeconds,
		Overlap:       cfg.Overlap,
		QueueBlocks:   cfg.QueueBlocks,
		JoinTimeout:   cfg.JoinTimeout,
	}, streamer, transcriber, keyword.NewDetector(table), scheduler, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Start(ctx); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}

	words := make([]string, 0, table.Len())
	for word := range table.Entries() {
		words = append(words, word)
	}
	log.Infof("listening for keywords: %s", strings.Join(words, ", "))
	fmt.Println("Listening. Press Ctrl-C to stop.")

	<-ctx.Done()
	fmt.Println("\nStopping...")
	return pipeline.Stop()
}

func loadTable(cfg *config.Config) (*keyword.Table, error) {
	if cfg.KeywordFile == "" {
		return keyword.DefaultTable(), nil
	}
	entries, err := config.LoadKeywords(cfg.KeywordFile)
	if err != nil {
		return nil, err
	}
	return keyword.NewTable(entries)
}

func buildTranscriber(cfg *config.Config, log *logger.Logger) (stt.Transcriber, error) {
	switch cfg.Engine {
	case "whisper":
		return stt.NewWhisperClient(cfg.WhisperURL, cfg.Language, log)
	case "speechkit":
		return stt.NewSpeechKitClient(stt.SpeechKitConfig{
			IamToken: cfg.IamToken,
			FolderID: cfg.FolderID,
			Language: cfg.Language,
		})
	default:
		return nil, fmt.Errorf("unknown stt engine %q", cfg.Engine)
	}
}
