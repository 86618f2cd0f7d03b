package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"eegscan/internal/ml"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// recordingFile is the on-disk recording layout: either a wrapped object
// with an explicit sampling rate, or a bare 2D array.
type recordingFile struct {
	Data [][]float64 `json:"data"`
	Fs   float64     `json:"fs"`
}

func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:5000", "EEG service base URL")
		filePath    = flag.String("file", "", "Path to JSON recording file")
		fs          = flag.Float64("fs", 0, "Sampling rate override in Hz")
		temperature = flag.Float64("temperature", 0, "Softmax temperature override")
		health      = flag.Bool("health", false, "Check service health instead of predicting")
		timeout     = flag.Duration("timeout", 2*time.Minute, "Request timeout")
		logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	client := resty.New().
		SetBaseURL(*serverURL).
		SetTimeout(*timeout).
		SetHeader("Content-Type", "application/json")

	if *health {
		if err := checkHealth(client); err != nil {
			log.Fatal().Err(err).Msg("health check failed")
		}
		return
	}

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: eegctl -file recording.json [-fs 250] [-temperature 1.0]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	rec, err := loadRecording(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("failed to load recording")
	}
	if *fs > 0 {
		rec.Fs = *fs
	}

	if err := predict(client, rec, *temperature); err != nil {
		log.Fatal().Err(err).Msg("prediction failed")
	}
}

func loadRecording(path string) (recordingFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return recordingFile{}, err
	}

	var rec recordingFile
	if err := json.Unmarshal(raw, &rec); err == nil && len(rec.Data) > 0 {
		return rec, nil
	}

	// Fall back to a bare 2D array.
	var data [][]float64
	if err := json.Unmarshal(raw, &data); err != nil {
		return recordingFile{}, fmt.Errorf("unrecognized recording format: %w", err)
	}
	return recordingFile{Data: data}, nil
}

func checkHealth(client *resty.Client) error {
	var health struct {
		Status          string `json:"status"`
		DeepLoaded      bool   `json:"deep_model_loaded"`
		ClassicalLoaded bool   `json:"classical_model_loaded"`
	}

	resp, err := client.R().SetResult(&health).Get("/api/eeg/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("server answered %s", resp.Status())
	}

	fmt.Printf("status:    %s\n", health.Status)
	fmt.Printf("deep:      %v\n", health.DeepLoaded)
	fmt.Printf("classical: %v\n", health.ClassicalLoaded)
	return nil
}

func predict(client *resty.Client, rec recordingFile, temperature float64) error {
	payload := map[string]any{"data": rec.Data}
	if rec.Fs > 0 {
		payload["fs"] = rec.Fs
	}
	if temperature > 0 {
		payload["temperature"] = temperature
	}

	var result struct {
		Biot         json.RawMessage `json:"biot"`
		RandomForest json.RawMessage `json:"random_forest"`
		Comparison   *ml.Ensemble    `json:"comparison"`
	}

	start := time.Now()
	resp, err := client.R().SetBody(payload).SetResult(&result).Post("/api/eeg/predict")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("server answered %s: %s", resp.Status(), resp.String())
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("request complete")

	printOutcome("biot", result.Biot)
	printOutcome("random_forest", result.RandomForest)

	if result.Comparison != nil {
		fmt.Println("ensemble:")
		fmt.Printf("  prediction: %s\n", result.Comparison.EnsemblePrediction)
		fmt.Printf("  confidence: %.4f\n", result.Comparison.EnsembleConfidence)
		fmt.Printf("  agreement:  %v\n", result.Comparison.Agreement)
		fmt.Printf("  source:     %s\n", result.Comparison.ConfidenceSource)
	}
	return nil
}

func printOutcome(name string, raw json.RawMessage) {
	if len(raw) == 0 {
		fmt.Printf("%s: not available\n", name)
		return
	}

	var v struct {
		Prediction *string `json:"prediction"`
		Confidence float64 `json:"confidence"`
		NWindows   int     `json:"n_windows"`
		Error      string  `json:"error"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Printf("%s: unreadable answer: %v\n", name, err)
		return
	}

	if v.Error != "" {
		fmt.Printf("%s: error: %s\n", name, v.Error)
		return
	}
	prediction := "unknown"
	if v.Prediction != nil {
		prediction = *v.Prediction
	}
	fmt.Printf("%s: %s (confidence %.4f, %d windows)\n", name, prediction, v.Confidence, v.NWindows)
}
