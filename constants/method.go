package constants

// Method tags reported on a conversion result. OCR results carry the engine
// name; embedded results carry the backend name plus EmbeddedSuffix.
const (
	MethodTesseract = "tesseract"
	MethodGosseract = "gosseract"

	EmbeddedSuffix = "_embedded"
)

// FallbackEmbedded annotates a result that was replaced by a full embedded-text extraction.
const FallbackEmbedded = "Used embedded text"

// EmbeddedMethod returns the method tag for text read straight from a backend's text layer.
func EmbeddedMethod(backend string) string {
	return backend + EmbeddedSuffix
}
