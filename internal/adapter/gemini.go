package adapter

import "github.com/reycn/agent-box/internal/model"

type geminiMatcher struct{}

func NewGeminiMatcher() Matcher {
	return geminiMatcher{}
}

func (geminiMatcher) Agent() model.AgentKind {
	return model.AgentGemini
}

func (geminiMatcher) MatchCommand(command string) bool {
	return containsExecToken(command, "gemini")
}
