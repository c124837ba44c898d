package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// ConfusionMatrix counts predictions per (true, predicted) label pair.
// Rows are true labels and columns predicted labels, both in Labels order.
type ConfusionMatrix struct {
	Labels []string
	Counts [][]int
}

// NewConfusionMatrix builds the matrix over the sorted union of labels seen
// in yTrue and yPred.
func NewConfusionMatrix(yTrue, yPred []string) (*ConfusionMatrix, error) {
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty input")
	}
	if len(yPred) != len(yTrue) {
		return nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}

	seen := make(map[string]struct{})
	for _, l := range yTrue {
		seen[l] = struct{}{}
	}
	for _, l := range yPred {
		seen[l] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range yTrue {
		counts[index[yTrue[i]]][index[yPred[i]]]++
	}
	return &ConfusionMatrix{Labels: labels, Counts: counts}, nil
}

// Total is the number of samples.
func (cm *ConfusionMatrix) Total() int {
	n := 0
	for _, row := range cm.Counts {
		for _, v := range row {
			n += v
		}
	}
	return n
}

// Accuracy is the fraction on the diagonal.
func (cm *ConfusionMatrix) Accuracy() float64 {
	correct := 0
	for i := range cm.Counts {
		correct += cm.Counts[i][i]
	}
	return float64(correct) / float64(cm.Total())
}

// ClassMetrics are the per-label scores of a ClassificationReport.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// ClassificationReport holds per-class and averaged scores.
type ClassificationReport struct {
	Labels      []string                `json:"labels"`
	Classes     map[string]ClassMetrics `json:"classes"`
	Accuracy    float64                 `json:"accuracy"`
	MacroAvg    ClassMetrics            `json:"macro avg"`
	WeightedAvg ClassMetrics            `json:"weighted avg"`
}

// NewClassificationReport derives precision, recall and F1 for every label.
// A ratio with a zero denominator is reported as 0 and raises an
// UndefinedMetricWarning through errors.Warn.
func NewClassificationReport(cm *ConfusionMatrix) *ClassificationReport {
	report := &ClassificationReport{
		Labels:   append([]string(nil), cm.Labels...),
		Classes:  make(map[string]ClassMetrics, len(cm.Labels)),
		Accuracy: cm.Accuracy(),
	}

	total := cm.Total()
	for i, label := range cm.Labels {
		tp := cm.Counts[i][i]
		var predicted, actual int
		for j := range cm.Labels {
			predicted += cm.Counts[j][i]
			actual += cm.Counts[i][j]
		}

		m := ClassMetrics{Support: actual}
		m.Precision = ratio("precision", label, "no predicted samples", tp, predicted)
		m.Recall = ratio("recall", label, "no true samples", tp, actual)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes[label] = m

		n := float64(len(cm.Labels))
		w := float64(actual) / float64(total)
		report.MacroAvg.Precision += m.Precision / n
		report.MacroAvg.Recall += m.Recall / n
		report.MacroAvg.F1 += m.F1 / n
		report.WeightedAvg.Precision += m.Precision * w
		report.WeightedAvg.Recall += m.Recall * w
		report.WeightedAvg.F1 += m.F1 * w
	}
	report.MacroAvg.Support = total
	report.WeightedAvg.Support = total
	return report
}

func ratio(metric, label, condition string, num, den int) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(
			fmt.Sprintf("%s[%s]", metric, label), condition, 0))
		return 0
	}
	return float64(num) / float64(den)
}

// Write prints the report as an aligned text table.
func (r *ClassificationReport) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
	for _, label := range r.Labels {
		m := r.Classes[label]
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "accuracy\t\t\t%.2f\t%d\t\n", r.Accuracy, r.MacroAvg.Support)
	fmt.Fprintf(tw, "macro avg\t%.2f\t%.2f\t%.2f\t%d\t\n", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(tw, "weighted avg\t%.2f\t%.2f\t%.2f\t%d\t\n", r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)
	return tw.Flush()
}

func (r *ClassificationReport) String() string {
	var b strings.Builder
	_ = r.Write(&b)
	return b.String()
}
