package timeseries

import (
	"math"
	"sort"

	"github.com/sartorproj/featurespace/errs"
)

// Column names of the long format.
const (
	IDColumn    = "unique_id"
	IndexColumn = "ds"
	ValueColumn = "y"
	DateColumn  = "date"
)

// Point is one row of the long format.
type Point struct {
	ID    string  `json:"unique_id"`
	Index Index   `json:"ds"`
	Value float64 `json:"y"`
}

// Collection maps series ids to series, remembering first-seen order.
type Collection struct {
	order  []string
	series map[string]*Series
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{series: make(map[string]*Series)}
}

// FromPoints builds a collection from long-format rows.
func FromPoints(points []Point) (*Collection, error) {
	c := NewCollection()
	for _, p := range points {
		if err := c.Append(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds a row to the series named by p.ID.
func (c *Collection) Append(p Point) error {
	if p.ID == "" {
		return errs.InvalidParameter("row without series id")
	}
	s, ok := c.series[p.ID]
	if !ok {
		s = &Series{Name: p.ID}
		c.series[p.ID] = s
		c.order = append(c.order, p.ID)
	}
	s.Index = append(s.Index, p.Index)
	s.Values = append(s.Values, p.Value)
	return nil
}

// Add inserts a whole series. An existing series with the same name is
// extended.
func (c *Collection) Add(s *Series) error {
	for i, v := range s.Values {
		idx := StepIndex(int64(i))
		if i < len(s.Index) {
			idx = s.Index[i]
		}
		if err := c.Append(Point{ID: s.Name, Index: idx, Value: v}); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of distinct series.
func (c *Collection) Len() int {
	return len(c.order)
}

// IDs returns the series ids in first-seen order.
func (c *Collection) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Series returns the series stored under id.
func (c *Collection) Series(id string) (*Series, bool) {
	s, ok := c.series[id]
	return s, ok
}

// Select returns the index-ordered series stored under id.
func (c *Collection) Select(id string) (*Series, error) {
	s, ok := c.series[id]
	if !ok {
		return nil, errs.InvalidParameter("unknown series %q", id)
	}
	return s.Sorted(), nil
}

// Long returns every row in first-seen series order.
func (c *Collection) Long() []Point {
	var out []Point
	for _, id := range c.order {
		s := c.series[id]
		for i, v := range s.Values {
			out = append(out, Point{ID: id, Index: s.Index[i], Value: v})
		}
	}
	return out
}

// Wide is a table with one shared index and one column per series.
// Missing cells hold NaN.
type Wide struct {
	Index   []Index
	Columns []string
	Values  [][]float64 // [row][column]
}

// Wide pivots the collection. Rows are the sorted union of all indices.
func (c *Collection) Wide() *Wide {
	var index []Index
	seen := make(map[string]bool)
	for _, id := range c.order {
		for _, idx := range c.series[id].Index {
			if k := idx.key(); !seen[k] {
				seen[k] = true
				index = append(index, idx)
			}
		}
	}
	sort.SliceStable(index, func(i, j int) bool { return index[i].Before(index[j]) })
	rows := make(map[string]int, len(index))
	for r, idx := range index {
		rows[idx.key()] = r
	}

	w := &Wide{
		Index:   index,
		Columns: c.IDs(),
		Values:  make([][]float64, len(index)),
	}
	for r := range w.Values {
		row := make([]float64, len(w.Columns))
		for j := range row {
			row[j] = math.NaN()
		}
		w.Values[r] = row
	}
	for j, id := range w.Columns {
		s := c.series[id]
		for i, v := range s.Values {
			w.Values[rows[s.Index[i].key()]][j] = v
		}
	}
	return w
}

// Melt turns the wide table into long format. NaN cells are skipped.
func (w *Wide) Melt() (*Collection, error) {
	c := NewCollection()
	for j, name := range w.Columns {
		for r, idx := range w.Index {
			v := w.Values[r][j]
			if math.IsNaN(v) {
				continue
			}
			if err := c.Append(Point{ID: name, Index: idx, Value: v}); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
