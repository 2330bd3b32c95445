package scorer

// Term is a vocabulary entry and the bonus it contributes.
type Term struct {
	Term  string
	Bonus float64
}

// Weights is the scoring table. Term lists are ordered so that scoring is deterministic.
type Weights struct {
	ExactPhrase   float64
	ImportantWord float64
	SentenceStart float64
	GeneralWord   float64
	NumericMatch  float64

	// Query words longer than these are important or general words, respectively.
	ImportantWordMinLen int
	GeneralWordMinLen   int

	// StructureTerms score when present in both query and chunk.
	StructureTerms []Term
	// QuestionPatterns score when present in the query, whatever the chunk says.
	QuestionPatterns []Term

	// Chunks shorter than ShortChunkLength characters have their score multiplied by ShortChunkFactor.
	ShortChunkLength int
	ShortChunkFactor float64
}

// DefaultWeights returns the standard scoring table.
func DefaultWeights() Weights {
	return Weights{
		ExactPhrase:         500,
		ImportantWord:       80,
		SentenceStart:       20,
		GeneralWord:         25,
		NumericMatch:        100,
		ImportantWordMinLen: 4,
		GeneralWordMinLen:   2,
		StructureTerms: []Term{
			{"table", 150},
			{"section", 120},
			{"chapter", 120},
			{"clause", 100},
			{"paragraph", 80},
			{"article", 100},
			{"rule", 120},
			{"regulation", 120},
		},
		QuestionPatterns: []Term{
			{"what is", 50},
			{"how to", 50},
			{"where", 40},
			{"when", 40},
			{"why", 40},
			{"which", 40},
			{"define", 60},
			{"explain", 60},
			{"requirement", 80},
			{"specification", 80},
			{"standard", 80},
		},
		ShortChunkLength: 50,
		ShortChunkFactor: 0.5,
	}
}
