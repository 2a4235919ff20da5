package model

// NextStep describes the notebook a completed batch chains into.
type NextStep struct {
	CycleName    string
	StageNum     int
	StepNum      int
	NotebookPath string
	Description  string
	// TriggeredBy is the batch whose status satisfied the chain entry.
	TriggeredBy int64
}
