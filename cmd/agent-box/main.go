package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reycn/agent-box/internal/collector"
	"github.com/reycn/agent-box/internal/config"
	"github.com/reycn/agent-box/internal/history"
	"github.com/reycn/agent-box/internal/logging"
	"github.com/reycn/agent-box/internal/netinfo"
	"github.com/reycn/agent-box/internal/peersync"
	"github.com/reycn/agent-box/internal/reconcile"
	"github.com/reycn/agent-box/internal/render"
	"github.com/reycn/agent-box/internal/security"
)

type flags struct {
	configPath string
	bindIP     string
	port       int
	interval   time.Duration
	protocol   string
	key        string
	noExpose   bool
	public     bool
	demo       bool
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "agent-box [HOST[:PASSKEY]]",
		Short: "Live dashboard for local and remote AI agent sessions",
		Long: `agent-box watches this machine for Claude, Codex and Gemini sessions and
renders them in the terminal. Pass a peer host to mirror its sessions too;
a bare HOST asks the peer for its passkey, HOST:PASSKEY joins directly.
IPv6 join targets must use the HOST:PASSKEY form with a bracketed host.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			peerArg := ""
			if len(args) == 1 {
				peerArg = args[0]
			}
			return run(cmd.Context(), f, peerArg)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to agent-box.yaml")
	cmd.Flags().StringVarP(&f.bindIP, "ip", "i", "", "address to listen on (default 127.0.0.1)")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "sync port (default 8346)")
	cmd.Flags().DurationVarP(&f.interval, "interval", "t", 0, "refresh interval (default 3s)")
	cmd.Flags().StringVarP(&f.protocol, "protocol", "r", "", "sync protocol label: http, https or quic")
	cmd.Flags().StringVar(&f.key, "key", "", "shared sync passkey (generated when omitted)")
	cmd.Flags().BoolVar(&f.noExpose, "no-expose", false, "never listen for peer pulls")
	cmd.Flags().BoolVar(&f.public, "public", false, "show the public IP in the share banner")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "render a canned snapshot instead of scanning processes")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "agent-box:", err)
		os.Exit(1)
	}
}

// discoverWithRetry asks a join peer for its passkey, backing off between
// attempts so a peer that is still starting up can be caught. Returns ""
// when every attempt fails.
func discoverWithRetry(host string, cfg config.Config, log *logrus.Entry) string {
	policy := peersync.DefaultRetryPolicy()
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		key, err := peersync.DiscoverJoinKey(host, cfg.Port, cfg.DiscoveryTimeout)
		if err == nil {
			log.WithField("peer", host).Info("joined with discovered passkey")
			return key
		}
		log.WithError(err).WithField("attempt", attempt).Debug("passkey discovery failed")
		if attempt < policy.MaxAttempts {
			time.Sleep(policy.DelayForAttempt(attempt))
		}
	}
	log.WithField("peer", host).Warn("passkey discovery gave up, generating a fresh key")
	return ""
}

func run(ctx context.Context, f *flags, peerArg string) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.bindIP != "" {
		cfg.BindIP = f.bindIP
	}
	if f.port != 0 {
		cfg.Port = f.port
	}
	if f.interval != 0 {
		cfg.TickInterval = f.interval
	}
	if f.protocol != "" {
		cfg.Protocol = f.protocol
	}

	logger, err := logging.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logging.Component(logger, "main")

	protocol, ok := peersync.ParseProtocol(strings.ToLower(cfg.Protocol))
	if !ok {
		return fmt.Errorf("unknown protocol %q", cfg.Protocol)
	}
	if err := netinfo.ValidateBind(cfg.BindIP, cfg.Port); err != nil {
		return err
	}

	host := hostLabel()
	joinHost, joinKey := parsePeer(peerArg)

	sharedKey := f.key
	if sharedKey == "" {
		sharedKey = joinKey
	}
	if sharedKey == "" && joinHost != "" {
		// Bare host: ask the peer for its passkey before inventing one.
		sharedKey = discoverWithRetry(joinHost, cfg, log)
	}
	keyGenerated := false
	if sharedKey == "" {
		seed := uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
		sharedKey = security.GeneratePasskey(host, time.Now().UnixMilli(), seed)
		keyGenerated = true
	}

	var server *peersync.Server
	if !f.noExpose {
		server, err = peersync.Bind(cfg.BindIP, cfg.Port, sharedKey)
		if err != nil {
			log.WithError(err).Warn("bind failed, running local-only")
			server = nil
		} else {
			defer server.Close()
			log.WithField("addr", server.Addr().String()).Info("listening for peer pulls")
		}
	}

	var journal *history.Journal
	if cfg.HistoryPath != "" {
		journal, err = history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			log.WithError(err).Warn("history disabled")
			journal = nil
		} else {
			defer journal.Close()
			log.WithField("run", journal.RunID()).Info("history journal open")
		}
	}

	var col collector.Collector = collector.NewLocalProcessCollector()
	if f.demo {
		col = collector.NewMockCollector()
	}

	renderer := render.NewRenderer()
	loop := reconcile.NewLoop(cfg, col, renderer.Render, logging.Component(logger, "reconcile"), reconcile.Options{
		HostLabel: host,
		SharedKey: sharedKey,
		JoinPeer:  joinHost,
		Protocol:  protocol,
		Server:    server,
		Journal:   journal,
	})

	displayIP := cfg.BindIP
	if f.public {
		if ip, derr := netinfo.DetectPublicIP(cfg.DiscoveryTimeout); derr == nil {
			displayIP = ip
		} else {
			log.WithError(derr).Warn("public IP detection failed")
		}
	}
	banner := shareBanner(displayIP, cfg.Port, sharedKey, keyGenerated, server != nil)

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()
	for {
		frame := loop.Tick(ctx)
		fmt.Print("\x1b[2J\x1b[H")
		fmt.Println(banner)
		fmt.Println()
		fmt.Println(frame)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
