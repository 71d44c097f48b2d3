package domain

// DifficultyLevel represents one of the ordered scenario difficulty levels.
type DifficultyLevel string

// Difficulty levels in ascending order.
const (
	DifficultyNovice       DifficultyLevel = "novice"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyExpert       DifficultyLevel = "expert"
)

// difficultyOrder maps each level to its position in the total order.
var difficultyOrder = map[DifficultyLevel]int{
	DifficultyNovice:       0,
	DifficultyIntermediate: 1,
	DifficultyAdvanced:     2,
	DifficultyExpert:       3,
}

// Ordinal returns the zero-based position of the level in the total order,
// or -1 if the level is not valid.
func (d DifficultyLevel) Ordinal() int {
	ord, ok := difficultyOrder[d]
	if !ok {
		return -1
	}
	return ord
}

// Valid reports whether the level is one of the defined levels.
func (d DifficultyLevel) Valid() bool {
	_, ok := difficultyOrder[d]
	return ok
}

// Next returns the level one step above d. Expert has no successor and
// returns itself.
func (d DifficultyLevel) Next() DifficultyLevel {
	switch d {
	case DifficultyNovice:
		return DifficultyIntermediate
	case DifficultyIntermediate:
		return DifficultyAdvanced
	case DifficultyAdvanced:
		return DifficultyExpert
	default:
		return d
	}
}
