package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forest.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

// Two stumps splitting on feature 0 at 0.5. Tree 1 is certain, tree 2 leans
// the same way but with mixed leaves.
const probaArtifact = `{
  "classes": [0, 1],
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
      {"leaf": true, "counts": [10, 0]},
      {"leaf": true, "counts": [0, 10]}
    ]},
    {"nodes": [
      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
      {"leaf": true, "counts": [3, 1]},
      {"leaf": true, "counts": [1, 3]}
    ]}
  ]
}`

const voteArtifact = `{
  "classes": [0, 1, 2],
  "trees": [
    {"nodes": [
      {"feature": 1, "threshold": 0.0, "left": 1, "right": 2},
      {"leaf": true, "label": 2},
      {"leaf": true, "label": 1}
    ]},
    {"nodes": [{"leaf": true, "label": 2}]},
    {"nodes": [{"leaf": true, "label": 1}]}
  ]
}`

func TestLoadForest_Proba(t *testing.T) {
	f, err := LoadForest(writeArtifact(t, probaArtifact))
	if err != nil {
		t.Fatalf("LoadForest failed: %v", err)
	}
	if !f.HasProba() {
		t.Fatal("Expected probability support")
	}
	if f.NumTrees() != 2 {
		t.Errorf("Expected 2 trees, got %d", f.NumTrees())
	}

	probs, err := f.PredictProba([]float64{0.2})
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	// Left leaves: (1.0 + 0.75) / 2 = 0.875 for class 0.
	if math.Abs(probs[0]-0.875) > 1e-12 || math.Abs(probs[1]-0.125) > 1e-12 {
		t.Errorf("Expected [0.875, 0.125], got %v", probs)
	}

	label, err := f.Predict([]float64{0.9})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if label != 1 {
		t.Errorf("Expected class 1 right of the split, got %d", label)
	}
}

func TestLoadForest_VoteOnly(t *testing.T) {
	f, err := LoadForest(writeArtifact(t, voteArtifact))
	if err != nil {
		t.Fatalf("LoadForest failed: %v", err)
	}
	if f.HasProba() {
		t.Fatal("Expected no probability support for label-only leaves")
	}
	if _, err := f.PredictProba([]float64{0, -1}); err == nil {
		t.Error("Expected PredictProba to fail without counts")
	}

	// Features: x[1] = -1 sends tree 1 to label 2; fixed trees vote 2 and 1.
	label, err := f.Predict([]float64{0, -1})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if label != 2 {
		t.Errorf("Expected majority label 2, got %d", label)
	}
}

func TestLoadForest_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"not json", "not a forest"},
		{"no classes", `{"classes": [], "trees": [{"nodes": [{"leaf": true}]}]}`},
		{"no trees", `{"classes": [0, 1], "trees": []}`},
		{"empty tree", `{"classes": [0, 1], "trees": [{"nodes": []}]}`},
		{"child out of range", `{"classes": [0], "trees": [{"nodes": [{"feature": 0, "threshold": 0, "left": 5, "right": 1}, {"leaf": true, "counts": [1]}]}]}`},
		{"count mismatch", `{"classes": [0, 1, 2], "trees": [{"nodes": [{"leaf": true, "counts": [1, 2]}]}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadForest(writeArtifact(t, tc.content)); err == nil {
				t.Error("Expected load to fail")
			}
		})
	}
}

func TestLoadForest_MissingFile(t *testing.T) {
	if _, err := LoadForest(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Expected error for missing artifact")
	}
}

func TestForest_FeatureOutOfRange(t *testing.T) {
	f, err := LoadForest(writeArtifact(t, probaArtifact))
	if err != nil {
		t.Fatalf("LoadForest failed: %v", err)
	}
	if _, err := f.PredictProba(nil); err == nil {
		t.Error("Expected error for empty feature vector")
	}
}
