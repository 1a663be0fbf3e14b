package ports

import "context"

// Segment is the unit of text handed to a machine-translation provider.
type Segment struct {
	Ref     string
	Key     string
	Comment string
}

type TranslateParams struct {
	SourceLang string
	TargetLang string
	Model      string
}

// Provider is a machine-translation backend. Implementations must return an
// error rather than an empty translation on failure.
type Provider interface {
	Translate(ctx context.Context, seg Segment, p TranslateParams) (string, error)
	Test(ctx context.Context) error
}
