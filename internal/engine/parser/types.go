package parser

// Function is one function definition in a file. Lines are 1-based, columns
// are 0-based byte offsets as reported by the grammar. A function is
// identified within a file by (Name, Line).
type Function struct {
	Name        string `json:"name"`
	Line        int    `json:"line"`
	EndLine     int    `json:"end_line"`
	StartColumn int    `json:"start_column"`
	EndColumn   int    `json:"end_column"`
}

// Call is one call site. For a dotted call "obj.method()", Receiver holds
// everything before the last dot and Column points at the method identifier,
// not the receiver. CallerFunction is the innermost enclosing function name,
// empty at module scope. IsCrossFile/FilePath are set only by the resolver.
type Call struct {
	Name           string `json:"name"`
	Line           int    `json:"line"`
	Column         int    `json:"column"`
	EndColumn      int    `json:"end_column"`
	FullText       string `json:"full_text"`
	Receiver       string `json:"receiver,omitempty"`
	CallerFunction string `json:"caller_function,omitempty"`
	IsCrossFile    bool   `json:"is_cross_file,omitempty"`
	FilePath       string `json:"file_path,omitempty"`
}

// CallerPosition is one recorded occurrence of a call to a function name.
// FilePath is set only for cross-file occurrences.
type CallerPosition struct {
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndColumn int    `json:"end_column"`
	FilePath  string `json:"file_path,omitempty"`
}

type Metadata struct {
	FunctionCount int `json:"function_count"`
	CallCount     int `json:"call_count"`
}

const (
	ImportKindPlain = "import"
	ImportKindFrom  = "from_import"
)

// Import is one import statement entry. For from-imports Symbol carries the
// imported name; Alias is set for "as" forms of either kind.
type Import struct {
	Kind   string `json:"type"`
	Module string `json:"module"`
	Symbol string `json:"import,omitempty"`
	Alias  string `json:"alias,omitempty"`
}

// AnalysisResult is the single result shape shared by the extractor, the
// resolver, and the derived views. Metadata counts always equal the slice
// lengths. FilePath and Imports are populated for project-scope analysis.
type AnalysisResult struct {
	Functions     []Function                  `json:"functions"`
	Calls         []Call                      `json:"calls"`
	CallersByFunc map[string][]CallerPosition `json:"callers_by_func"`
	Metadata      Metadata                    `json:"metadata"`
	FilePath      string                      `json:"file_path,omitempty"`
	Imports       []Import                    `json:"imports,omitempty"`
}

// EmptyResult returns a valid all-empty analysis result.
func EmptyResult() *AnalysisResult {
	return &AnalysisResult{
		Functions:     []Function{},
		Calls:         []Call{},
		CallersByFunc: map[string][]CallerPosition{},
	}
}

// IsEmpty reports whether the result has neither functions nor calls.
func (r *AnalysisResult) IsEmpty() bool {
	return r == nil || (len(r.Functions) == 0 && len(r.Calls) == 0)
}

// Normalize re-derives metadata counts and replaces nil collections with
// empty ones so downstream views never see a nil slice or map.
func (r *AnalysisResult) Normalize() *AnalysisResult {
	if r == nil {
		return EmptyResult()
	}
	if r.Functions == nil {
		r.Functions = []Function{}
	}
	if r.Calls == nil {
		r.Calls = []Call{}
	}
	if r.CallersByFunc == nil {
		r.CallersByFunc = map[string][]CallerPosition{}
	}
	r.Metadata.FunctionCount = len(r.Functions)
	r.Metadata.CallCount = len(r.Calls)
	return r
}

// FunctionNames returns the set of names defined in this file.
func (r *AnalysisResult) FunctionNames() map[string]bool {
	names := make(map[string]bool, len(r.Functions))
	for _, f := range r.Functions {
		names[f.Name] = true
	}
	return names
}
