package study

import "io"

// TaskKind selects the prompt template and the response shape a request
// must satisfy.
type TaskKind string

const (
	// TaskSolveQuestions answers the questions found in the document.
	TaskSolveQuestions TaskKind = "solve-questions"
	// TaskGenerateNotes produces study notes from the document.
	TaskGenerateNotes TaskKind = "generate-notes"
)

// TextExtractor produces plain text from an uploaded PDF stream.
type TextExtractor interface {
	Extract(r io.Reader) (string, error)
}

// ContentGenerator sends a finished prompt to the model and returns its raw
// text reply.
type ContentGenerator interface {
	GenerateContent(prompt string) (string, error)
}
