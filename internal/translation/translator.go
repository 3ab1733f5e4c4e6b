// Package translation defines the translator contract and its
// LLM-backed implementation. A translation failure is an ordinary
// error return; callers decide per line whether to continue.
package translation

// Translator turns one subtitle line into the target language.
// contextLabel names the show or video the line belongs to, which the
// implementation may feed to the model as translation context.
type Translator interface {
	Translate(text, contextLabel string) (string, error)
}
