package categorizer

import "errors"

var (
	// ErrScoreOutOfRange is returned when the oracle yields a score outside [0,1]
	ErrScoreOutOfRange = errors.New("similarity score out of range")

	// ErrUnpopulatedCell is returned when a matrix cell is still unscored at decision time
	ErrUnpopulatedCell = errors.New("similarity matrix cell was never populated")

	// ErrInvalidCategory is returned when a domain's category labels repeat or
	// use the reserved Novel label
	ErrInvalidCategory = errors.New("invalid category label")

	// ErrPartitionViolation is returned when novel clusters do not partition the
	// novel bucket. It indicates a logic error and must never be ignored.
	ErrPartitionViolation = errors.New("novel clusters do not partition the novel responses")
)
