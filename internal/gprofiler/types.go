package gprofiler

// profileRequest is the JSON body of a g:GOSt profile query.
type profileRequest struct {
	Organism                    string   `json:"organism"`
	Query                       []string `json:"query"`
	Sources                     []string `json:"sources,omitempty"`
	UserThreshold               float64  `json:"user_threshold"`
	SignificanceThresholdMethod string   `json:"significance_threshold_method"`
	AllResults                  bool     `json:"all_results"`
	Ordered                     bool     `json:"ordered"`
	NoEvidences                 bool     `json:"no_evidences"`
	NoIEA                       bool     `json:"no_iea"`
	Combined                    bool     `json:"combined"`
	MeasureUnderrepresentation  bool     `json:"measure_underrepresentation"`
	DomainScope                 string   `json:"domain_scope"`
}

// profileResponse is the subset of the g:GOSt response that is used.
type profileResponse struct {
	Result []resultRecord `json:"result"`
	Meta   responseMeta   `json:"meta"`
}

type responseMeta struct {
	Version       string        `json:"version"`
	Timestamp     string        `json:"timestamp"`
	GenesMetadata genesMetadata `json:"genes_metadata"`
}

type genesMetadata struct {
	Failed []string                 `json:"failed"`
	Query  map[string]queryMetadata `json:"query"`
}

type queryMetadata struct {
	// ENSGs lists the resolved gene IDs; each result's intersections are
	// aligned to this slice.
	ENSGs   []string            `json:"ensgs"`
	Mapping map[string][]string `json:"mapping"`
}

// resultRecord is one term as returned by the service. Pointer fields are
// checked for presence when converting to ora.Term.
type resultRecord struct {
	Native              string     `json:"native"`
	Name                string     `json:"name"`
	Source              string     `json:"source"`
	Description         *string    `json:"description"`
	PValue              *float64   `json:"p_value"`
	Significant         bool       `json:"significant"`
	TermSize            int        `json:"term_size"`
	QuerySize           int        `json:"query_size"`
	IntersectionSize    int        `json:"intersection_size"`
	EffectiveDomainSize int        `json:"effective_domain_size"`
	Precision           float64    `json:"precision"`
	Recall              float64    `json:"recall"`
	Query               string     `json:"query"`
	Intersections       [][]string `json:"intersections"`
}

// errorResponse is the body returned with 4xx responses.
type errorResponse struct {
	Message string `json:"message"`
}
