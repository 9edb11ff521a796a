package collector

import "strings"

func titleFromCommand(command string) string {
	return summarizeCommand(command, 48)
}

// summarizeCommand compresses a command line to "<exe> <last args>" so long
// interpreter paths do not crowd out the part an operator recognizes.
func summarizeCommand(command string, limit int) string {
	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return ""
	}
	exe := tokens[0]
	if idx := strings.LastIndex(exe, "/"); idx >= 0 {
		exe = exe[idx+1:]
	}
	tail := tokens[1:]
	summary := exe
	if len(tail) > 0 {
		if len(tail) > 3 {
			tail = tail[len(tail)-3:]
		}
		summary = exe + " " + strings.Join(tail, " ")
	}
	return truncateKeepRight(summary, limit)
}

// truncateKeepRight keeps the end of the string, which for commands is the
// distinguishing part.
func truncateKeepRight(input string, limit int) string {
	runes := []rune(input)
	if len(runes) <= limit {
		return input
	}
	take := limit - 3
	if take < 0 {
		take = 0
	}
	return "..." + string(runes[len(runes)-take:])
}
