package track

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

//NumericArray is a typed, shaped numeric buffer, the form in which
//array-oriented producers (the tracker script) emit team colors:
//
//	{"dtype": "float32", "shape": [3], "data": [255, 0, 0]}
type NumericArray struct {
	DType string    `json:"dtype" yaml:"dtype"`
	Shape []int     `json:"shape" yaml:"shape"`
	Data  []float64 `json:"data" yaml:"data"`
}

//Flatten returns the array's values in row-major order as plain numbers.
//Integer dtypes are rounded so a float-encoded 254.9999 comes back as 255.
func (a *NumericArray) Flatten() []float64 {
	out := make([]float64, len(a.Data))
	integral := strings.HasPrefix(a.DType, "int") || strings.HasPrefix(a.DType, "uint")
	for i, v := range a.Data {
		if integral {
			v = math.Round(v)
		}
		out[i] = v
	}
	return out
}

//Color is a team color. Tracker output may carry it as a NumericArray;
//Normalize turns it into a plain component list.
type Color struct {
	Components []float64
	Array      *NumericArray
}

//RGB builds a plain color.
func RGB(r, g, b float64) *Color {
	return &Color{Components: []float64{r, g, b}}
}

//Plain reports whether c is already a plain component list.
func (c *Color) Plain() bool {
	return c.Array == nil
}

//Values returns the color components regardless of representation.
func (c *Color) Values() []float64 {
	if c.Array != nil {
		return c.Array.Flatten()
	}
	return c.Components
}

//Clone returns a deep copy of c.
func (c *Color) Clone() *Color {
	out := &Color{}
	if c.Components != nil {
		out.Components = append([]float64(nil), c.Components...)
	}
	if c.Array != nil {
		a := *c.Array
		a.Shape = append([]int(nil), c.Array.Shape...)
		a.Data = append([]float64(nil), c.Array.Data...)
		out.Array = &a
	}
	return out
}

func (c Color) MarshalJSON() ([]byte, error) {
	if c.Array != nil {
		return json.Marshal(c.Array)
	}
	if c.Components == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Components)
}

func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty color")
	}
	switch data[0] {
	case '[':
		c.Array = nil
		return json.Unmarshal(data, &c.Components)
	case '{':
		var a NumericArray
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		c.Components = nil
		c.Array = &a
		return nil
	}
	return fmt.Errorf("color must be a list or a numeric array, got %s", data)
}

func (c Color) MarshalYAML() (interface{}, error) {
	if c.Array != nil {
		return c.Array, nil
	}
	if c.Components == nil {
		return []float64{}, nil
	}
	return c.Components, nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		c.Array = nil
		return node.Decode(&c.Components)
	case yaml.MappingNode:
		var a NumericArray
		if err := node.Decode(&a); err != nil {
			return err
		}
		c.Components = nil
		c.Array = &a
		return nil
	}
	return fmt.Errorf("color must be a sequence or a mapping at line %d", node.Line)
}
