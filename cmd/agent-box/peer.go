package main

import (
	"fmt"
	"os"
	"strings"
)

// parsePeer splits the optional HOST[:PASSKEY] positional argument. A bare
// host means the passkey still has to be discovered or generated. The split
// is on the last colon, so bare IPv6 literals are not supported; bracketed
// IPv6 with an explicit passkey works.
func parsePeer(arg string) (host, passkey string) {
	if arg == "" {
		return "", ""
	}
	idx := strings.LastIndex(arg, ":")
	if idx < 0 {
		return arg, ""
	}
	host, passkey = arg[:idx], arg[idx+1:]
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "" {
		return arg, ""
	}
	return host, passkey
}

// hostLabel names this machine in envelopes and share banners.
func hostLabel() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	for _, env := range []string{"HOSTNAME", "COMPUTERNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return "localhost"
}

func shareBanner(ip string, port int, passkey string, generated, exposed bool) string {
	if !exposed {
		return "Peer sync off. Showing local sessions only."
	}
	if generated {
		return fmt.Sprintf("Mirror from another machine:  agent-box %s:%s  (port %d)", ip, passkey, port)
	}
	return fmt.Sprintf("Listening on %s:%d with the provided key.", ip, port)
}
