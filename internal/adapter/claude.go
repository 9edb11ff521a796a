package adapter

import "github.com/reycn/agent-box/internal/model"

type claudeMatcher struct{}

func NewClaudeMatcher() Matcher {
	return claudeMatcher{}
}

func (claudeMatcher) Agent() model.AgentKind {
	return model.AgentClaude
}

func (claudeMatcher) MatchCommand(command string) bool {
	return containsExecToken(command, "claude")
}
