package resolve

import (
	"strconv"
	"strings"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
)

// buildPrompt renders the single request sent to the reasoning service.
func buildPrompt(c *catalog.Catalog, prompt string, files []message.File) string {
	var sb strings.Builder
	sb.WriteString("You are a function calling assistant. Based on the user's prompt and uploaded files, ")
	sb.WriteString("choose exactly one function to call and extract its parameters.\n\n")

	sb.WriteString("Available functions:\n")
	sb.WriteString(c.Render())

	if exts := message.Extensions(files); len(exts) > 0 {
		sb.WriteString("\nUploaded files: " + strings.Join(exts, ", ") + "\n")
	} else {
		sb.WriteString("\nUploaded files: none\n")
	}

	sb.WriteString("\nRespond with only a JSON object with these keys:\n")
	sb.WriteString("- function_name: the exact function name to call\n")
	sb.WriteString("- parameters: an object mapping parameter names to string, number or boolean values\n")
	sb.WriteString("- confidence: a number between 0 and 1\n")

	sb.WriteString("\nRules:\n")
	sb.WriteString("1. Use only the functions listed above.\n")
	sb.WriteString("2. Take parameter values from the prompt; omit parameters the prompt does not mention.\n")
	sb.WriteString("3. Consider the uploaded file types when choosing.\n")

	sb.WriteString("\nUser prompt: " + strconv.Quote(prompt) + "\n")
	return sb.String()
}
