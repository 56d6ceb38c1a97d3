package catalog

type Outcome int

const (
	Inserted Outcome = iota
	Duplicate
	Invalid
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	}
	return "unknown"
}

type InsertResult struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"-"`
	Status  string  `json:"status"`
}

type InsertResults []InsertResult

func (r InsertResults) Count(o Outcome) int {
	n := 0
	for _, res := range r {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// MergeSummary counts what a merge did per item.
type MergeSummary struct {
	Updated   int `json:"updated"`
	Created   int `json:"created"`
	Unchanged int `json:"unchanged"`
	Missing   int `json:"missing"`
	Failed    int `json:"failed"`
}
