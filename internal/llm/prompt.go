package llm

import "fmt"

// QuestionPrompt asks for a question whose answer is answer.
func QuestionPrompt(context, answer string) string {
	return fmt.Sprintf("Generate a question whose answer is \"%s\".\nContext: %s\nQuestion:", answer, context)
}

// DistractorPrompt asks for plausible wrong answers to question.
func DistractorPrompt(question, answer, context string) string {
	return fmt.Sprintf("Generate plausible but incorrect distractors.\nQuestion: %s\nCorrect answer: %s\nContext: %s\nDistractors:", question, answer, context)
}
