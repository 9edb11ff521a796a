package adapter

import "github.com/reycn/agent-box/internal/model"

type codexMatcher struct{}

func NewCodexMatcher() Matcher {
	return codexMatcher{}
}

func (codexMatcher) Agent() model.AgentKind {
	return model.AgentCodex
}

func (codexMatcher) MatchCommand(command string) bool {
	return containsExecToken(command, "codex") || containsExecToken(command, "openai")
}
