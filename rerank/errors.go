package rerank

import "errors"

var (
	// ErrJudgeRequired is returned when no judge is provided.
	ErrJudgeRequired = errors.New("relevance judge required")

	// ErrInvalidConfig is returned for unusable batch or worker settings.
	ErrInvalidConfig = errors.New("invalid rerank config")

	// ErrJudgePanic wraps a panic raised inside the judge.
	ErrJudgePanic = errors.New("judge panicked")
)
