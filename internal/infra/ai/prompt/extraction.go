package prompt

import "fmt"

// GetTranscriptionPrompt instructs the vision model to return the document text verbatim.
func GetTranscriptionPrompt() string {
	return `You transcribe scanned Brazilian municipal documents (ofícios, portarias, processos, editais).
Return only the text that appears in the image, exactly as written, in Portuguese.

Rules:
- Keep accents, capitalisation, punctuation and line breaks as printed.
- Keep numbers, dates (dd/mm/aaaa) and currency amounts (R$ 1.234,56) character for character. Never correct them.
- Do not summarise, translate, explain or add markdown.
- If a word is illegible write [ilegível].
- If the image contains no text, return an empty response.`
}

// GetUserPrompt builds the user message for one document.
func GetUserPrompt(name string) string {
	if name == "" {
		return "Transcreva o documento."
	}
	return fmt.Sprintf("Transcreva o documento %q.", name)
}
