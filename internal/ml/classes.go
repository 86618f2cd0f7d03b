// Package ml implements the prediction side of the pipeline: the deep and
// classical predictors, per-model aggregation of window probabilities into a
// verdict, and the ensemble reconciliation of the two verdicts.
//
// Predictors share the loaded model artifacts, which are immutable after
// startup, so a single Service instance is safe for concurrent requests.
package ml

import "fmt"

// Classes maps training label indices to abnormality names. The order is
// fixed by the training runs of both models.
var Classes = [...]string{
	"normal",
	"seizure",
	"alcoholism",
	"motor_abnormality",
	"mental_stress",
	"epileptic_interictal",
}

// NumClasses is the number of abnormality categories.
const NumClasses = len(Classes)

// ConfidenceThreshold is the minimum top-class probability for a verdict to
// keep its label. Below it the label is overridden to "unknown"; the
// comparison is strict, exactly 0.5 passes.
const ConfidenceThreshold = 0.5

// Unknown is the label reported when confidence falls below threshold.
const Unknown = "unknown"

// ClassName returns the abnormality name for a label index.
func ClassName(idx int) string {
	if idx >= 0 && idx < NumClasses {
		return Classes[idx]
	}
	return fmt.Sprintf("class_%d", idx)
}
