// Package adapter classifies OS process command lines into agent kinds.
// Each supported agent contributes one matcher; the registry asks them in a
// fixed order so classification is deterministic.
package adapter

import (
	"strings"

	"github.com/reycn/agent-box/internal/model"
)

// Matcher recognizes one agent's processes from a raw command line.
type Matcher interface {
	Agent() model.AgentKind
	MatchCommand(command string) bool
}

type Registry struct {
	matchers []Matcher
}

func NewRegistry(matchers ...Matcher) *Registry {
	return &Registry{matchers: matchers}
}

func DefaultRegistry() *Registry {
	return NewRegistry(
		NewClaudeMatcher(),
		NewCodexMatcher(),
		NewGeminiMatcher(),
	)
}

// Classify returns the agent kind for a command line, or false when no
// matcher recognizes it (the process is not an agent session).
func (r *Registry) Classify(command string) (model.AgentKind, bool) {
	lower := strings.ToLower(command)
	for _, m := range r.matchers {
		if m.MatchCommand(lower) {
			return m.Agent(), true
		}
	}
	return model.AgentUnknown, false
}

// containsExecToken reports whether the command invokes the named executable,
// either bare or by path. Substring matches are not enough: "preclaudework"
// must not classify as claude.
func containsExecToken(command, needle string) bool {
	for _, token := range strings.Fields(command) {
		if token == needle || strings.HasSuffix(token, "/"+needle) {
			return true
		}
	}
	return false
}
