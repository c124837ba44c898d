package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// CategoricalEncoder turns one categorical column into one or more numerical
// columns using a vocabulary learned by Fit.
type CategoricalEncoder interface {
	Fit(c *table.Column) error
	Transform(c *table.Column) ([]*table.Column, error)

	// Categories returns the learned vocabulary, sorted.
	Categories() []string

	// FeatureNames returns the names of the columns Transform produces.
	FeatureNames() []string

	// Method is "onehot" or "label".
	Method() string
}

var (
	_ CategoricalEncoder = (*OneHotEncoder)(nil)
	_ CategoricalEncoder = (*LabelEncoder)(nil)
)

type vocabulary struct {
	column     string
	categories []string
	index      map[string]int
}

func (v *vocabulary) learn(op string, c *table.Column) error {
	if c.MissingCount() > 0 {
		return errors.NewValueErrorf(op, "column %q contains %d missing values; impute before encoding", c.Name(), c.MissingCount())
	}
	v.column = c.Name()
	v.categories = c.Unique()
	v.index = make(map[string]int, len(v.categories))
	for i, cat := range v.categories {
		v.index[cat] = i
	}
	return nil
}

func (v *vocabulary) code(op string, c *table.Column, i int) (int, error) {
	if c.IsMissing(i) {
		return 0, errors.NewValueErrorf(op, "column %q has a missing value at row %d", c.Name(), i)
	}
	code, ok := v.index[c.String(i)]
	if !ok {
		return 0, errors.NewValueErrorf(op, "unknown category %q in column %q", c.String(i), c.Name())
	}
	return code, nil
}

func (v *vocabulary) Categories() []string {
	return append([]string(nil), v.categories...)
}

// OneHotEncoder emits one indicator column per category. With DropFirst the
// first sorted category is the reference level and gets no column.
type OneHotEncoder struct {
	vocabulary
	state     *model.StateManager
	DropFirst bool
}

func NewOneHotEncoder(dropFirst bool) *OneHotEncoder {
	return &OneHotEncoder{state: model.NewStateManager(), DropFirst: dropFirst}
}

func (e *OneHotEncoder) Fit(c *table.Column) error {
	if err := e.learn("OneHotEncoder.Fit", c); err != nil {
		return err
	}
	e.state.SetFitted(c.Len(), e.FeatureNames())
	return nil
}

// Transform returns the indicator columns named {column}_{category}.
// A category not seen by Fit is a ValueError.
func (e *OneHotEncoder) Transform(c *table.Column) ([]*table.Column, error) {
	if err := e.state.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	offset := 0
	if e.DropFirst {
		offset = 1
	}
	width := len(e.categories) - offset
	values := make([][]float64, width)
	for k := range values {
		values[k] = make([]float64, c.Len())
	}
	for i := 0; i < c.Len(); i++ {
		code, err := e.code("OneHotEncoder.Transform", c, i)
		if err != nil {
			return nil, err
		}
		if k := code - offset; k >= 0 {
			values[k][i] = 1
		}
	}

	names := e.FeatureNames()
	out := make([]*table.Column, width)
	for k := range out {
		out[k] = table.NewNumerical(names[k], values[k])
	}
	return out, nil
}

func (e *OneHotEncoder) FeatureNames() []string {
	cats := e.categories
	if e.DropFirst && len(cats) > 0 {
		cats = cats[1:]
	}
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = fmt.Sprintf("%s_%s", e.column, cat)
	}
	return names
}

func (e *OneHotEncoder) Method() string { return "onehot" }

// LabelEncoder replaces each category by its position in the sorted vocabulary.
type LabelEncoder struct {
	vocabulary
	state *model.StateManager
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{state: model.NewStateManager()}
}

func (e *LabelEncoder) Fit(c *table.Column) error {
	if err := e.learn("LabelEncoder.Fit", c); err != nil {
		return err
	}
	e.state.SetFitted(c.Len(), e.FeatureNames())
	return nil
}

// Transform returns a single numerical column with the same name as c.
func (e *LabelEncoder) Transform(c *table.Column) ([]*table.Column, error) {
	if err := e.state.RequireFitted("LabelEncoder", "Transform"); err != nil {
		return nil, err
	}
	codes := make([]float64, c.Len())
	for i := range codes {
		code, err := e.code("LabelEncoder.Transform", c, i)
		if err != nil {
			return nil, err
		}
		codes[i] = float64(code)
	}
	return []*table.Column{table.NewNumerical(c.Name(), codes)}, nil
}

// InverseTransform maps codes back to categories.
func (e *LabelEncoder) InverseTransform(codes []float64) ([]string, error) {
	if err := e.state.RequireFitted("LabelEncoder", "InverseTransform"); err != nil {
		return nil, err
	}
	out := make([]string, len(codes))
	for i, v := range codes {
		k := int(v)
		if float64(k) != v || k < 0 || k >= len(e.categories) {
			return nil, errors.NewValueErrorf("LabelEncoder.InverseTransform", "code %v is not in [0, %d)", v, len(e.categories))
		}
		out[i] = e.categories[k]
	}
	return out, nil
}

func (e *LabelEncoder) FeatureNames() []string { return []string{e.column} }

func (e *LabelEncoder) Method() string { return "label" }
