package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ONNXRuntime runs the exported deep model through an ONNX Runtime session
// hosted in a Python subprocess, speaking JSON over stdin/stdout. Keeping the
// runtime out of process means the Go side needs no accelerator bindings and
// a wedged inference can be killed by the context deadline.
type ONNXRuntime struct {
	available  bool
	modelPath  string
	pythonPath string
	scriptPath string
	timeout    time.Duration
}

type forwardRequest struct {
	Windows [][][]float64 `json:"windows"`
}

type forwardResponse struct {
	Logits [][]float64 `json:"logits"`
	Error  string      `json:"error,omitempty"`
}

// NewONNXRuntime prepares a runtime for the weight file at path. A missing
// file or missing Python interpreter is not an error: the runtime comes back
// unloaded and the caller serves in degraded mode.
func NewONNXRuntime(path string, timeout time.Duration) *ONNXRuntime {
	r := &ONNXRuntime{modelPath: path, timeout: timeout}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn().Str("model_path", path).Msg("deep model weights not found, predictor disabled")
		return r
	}

	pythonPath, err := findPython()
	if err != nil {
		log.Warn().Err(err).Msg("no Python with onnxruntime found, deep predictor disabled")
		return r
	}
	r.pythonPath = pythonPath

	// Prefer a script shipped next to the weights, fall back to the
	// embedded one.
	scriptPath := filepath.Join(filepath.Dir(path), "onnx_inference.py")
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		scriptPath = filepath.Join(filepath.Dir(path), "onnx_inference_embedded.py")
		if err := writeInferenceScript(scriptPath); err != nil {
			log.Warn().Err(err).Msg("failed to write inference script, deep predictor disabled")
			return r
		}
	}
	r.scriptPath = scriptPath
	r.available = true
	log.Info().Str("model_path", path).Str("python", pythonPath).Msg("deep model runtime ready")
	return r
}

// Loaded implements Runtime.
func (r *ONNXRuntime) Loaded() bool { return r != nil && r.available }

// Forward implements Runtime.
func (r *ONNXRuntime) Forward(batch [][][]float64) ([][]float64, error) {
	if !r.Loaded() {
		return nil, fmt.Errorf("onnx runtime not loaded")
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty batch")
	}

	reqJSON, err := json.Marshal(forwardRequest{Windows: batch})
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.pythonPath, r.scriptPath, r.modelPath)
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().
			Err(err).
			Str("model_path", r.modelPath).
			Str("stderr", stderr.String()).
			Int("batch_size", len(batch)).
			Msg("onnx inference subprocess failed")

		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("inference timeout after %v", r.timeout)
		}
		if strings.Contains(stderr.String(), "onnxruntime not installed") {
			return nil, fmt.Errorf("onnxruntime dependency missing: %w", err)
		}
		if strings.Contains(stderr.String(), "No such file or directory") {
			return nil, fmt.Errorf("model file not accessible: %w", err)
		}
		return nil, fmt.Errorf("onnx inference failed: %w, stderr: %s", err, stderr.String())
	}

	var resp forwardResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("parse inference response: %w, stdout: %s", err, stdout.String())
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("onnx inference error: %s", resp.Error)
	}
	if len(resp.Logits) != len(batch) {
		return nil, fmt.Errorf("expected %d logit rows, got %d", len(batch), len(resp.Logits))
	}
	return resp.Logits, nil
}

func findPython() (string, error) {
	verify := func(path string) bool {
		cmd := exec.Command(path, "-c", "import sys, onnxruntime; print('Python', sys.version)")
		output, err := cmd.Output()
		return err == nil && strings.Contains(string(output), "Python 3")
	}

	if venv := os.Getenv("VIRTUAL_ENV"); venv != "" {
		candidates := []string{
			filepath.Join(venv, "bin", "python3"),
			filepath.Join(venv, "bin", "python"),
			filepath.Join(venv, "Scripts", "python.exe"),
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil && verify(p) {
				return p, nil
			}
		}
	}

	for _, candidate := range []string{"python3", "python", "python3.12", "python3.11", "python3.10"} {
		path, err := exec.LookPath(candidate)
		if err == nil && verify(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no Python 3 with onnxruntime found")
}

func writeInferenceScript(scriptPath string) error {
	script := `#!/usr/bin/env python3
"""ONNX inference bridge: windows in on stdin, logits out on stdout."""
import sys
import json
import numpy as np

try:
    import onnxruntime as ort
except ImportError:
    print(json.dumps({"error": "onnxruntime not installed"}))
    sys.exit(1)

def main():
    if len(sys.argv) != 2:
        print(json.dumps({"error": "usage: onnx_inference.py <model_path>"}))
        sys.exit(1)

    try:
        request = json.load(sys.stdin)
        windows = np.array(request["windows"], dtype=np.float32)

        session = ort.InferenceSession(sys.argv[1])
        input_name = session.get_inputs()[0].name
        outputs = session.run(None, {input_name: windows})

        logits = np.asarray(outputs[0], dtype=np.float64)
        print(json.dumps({"logits": logits.tolist()}))
    except Exception as e:
        print(json.dumps({"error": str(e)}))
        sys.exit(1)

if __name__ == "__main__":
    main()
`
	return os.WriteFile(scriptPath, []byte(script), 0755)
}
