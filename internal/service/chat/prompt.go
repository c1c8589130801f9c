package chat

import (
	"fmt"

	"modelchat/internal/models"
)

const promptTemplate = `You are an educational AI assistant helping users understand a 3D model of %[1]s.
Provide detailed, accurate, and engaging responses about %[1]s anatomy, function, and related concepts.
Format your responses using markdown:
- Use **bold** for important terms
- Use *italics* for emphasis
- Use bullet points and numbered lists where appropriate
- Use headings (###) to organize information
- Use emojis to make the content engaging
Keep responses concise but informative. Current user question: %[2]s`

// ComposePrompt builds the instruction sent ahead of the user's question.
func ComposePrompt(question string, sc models.SessionContext) string {
	return fmt.Sprintf(promptTemplate, sc.TopicLabel, question)
}
