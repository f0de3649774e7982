package explain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xonecas/typedesc/internal/provider"
)

const systemPrompt = "You are a senior C#/.NET engineer mentoring a junior developer. Provide a thorough, " +
	"plain-English explanation of the selected code. Start with an overview that explains " +
	"its responsibilities, how it fits into the bigger picture, and any important " +
	"design decisions. Then describe every method one by one. For each method, " +
	"explain what it does, why it exists, noteworthy parameters or return values, and walk " +
	"through its logic using clear pseudo-code style bullet points. Highlight dependencies, " +
	"side effects, error handling, and potential pitfalls. The goal is to let the reader " +
	"understand the code without reading it. Be as detailed and instructive as possible."

// Messages builds the chat for one explanation.
func Messages(fileName, language, code string) []provider.Message {
	return []provider.Message{
		{Role: provider.RoleSystem, Content: systemPrompt},
		{Role: provider.RoleUser, Content: userPrompt(fileName, language, code)},
	}
}

func userPrompt(fileName, language, code string) string {
	return fmt.Sprintf("File: %s\nLanguage: %s\n\n```%s\n%s\n```\n", fileName, language, language, code)
}

// NormalizeLanguage maps a language display name to the fence tag used in
// the prompt. Empty means C#.
func NormalizeLanguage(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "c#", "csharp", "cs":
		return "csharp"
	case "visual basic", "visualbasic", "vb":
		return "vb"
	case "f#", "fsharp", "fs":
		return "fsharp"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// LanguageOf returns the language display name of a source file.
func LanguageOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vb":
		return "Visual Basic"
	case ".fs", ".fsx", ".fsi":
		return "F#"
	default:
		return "C#"
	}
}

// FileName is the name the prompt shows for path.
func FileName(path string) string {
	if path == "" {
		return "document"
	}
	return filepath.Base(path)
}
