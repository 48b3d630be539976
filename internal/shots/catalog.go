// Package shots turns detected intervals into saved still images and keeps
// the resulting catalog.
package shots

import "time"

// Record is one extracted shot.
type Record struct {
	ID        int           `json:"id"`
	ImagePath string        `json:"image_path"`
	Timecode  string        `json:"timecode"`
	Start     int           `json:"start_frame"`
	Frame     int           `json:"frame"`
	Time      time.Duration `json:"time"`
}

// Catalog is the ordered, read-only result of one run. Records are in
// chronological order, which is also id order.
type Catalog struct {
	records []Record
}

// NewCatalog copies records into a catalog.
func NewCatalog(records []Record) *Catalog {
	return &Catalog{records: append([]Record(nil), records...)}
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns a copy of the records.
func (c *Catalog) Records() []Record {
	if c == nil {
		return nil
	}
	return append([]Record(nil), c.records...)
}

// At returns the record at position i.
func (c *Catalog) At(i int) (Record, bool) {
	if i < 0 || i >= c.Len() {
		return Record{}, false
	}
	return c.records[i], true
}

// ImagePaths returns the image paths in catalog order.
func (c *Catalog) ImagePaths() []string {
	paths := make([]string, 0, c.Len())
	for _, r := range c.Records() {
		paths = append(paths, r.ImagePath)
	}
	return paths
}
