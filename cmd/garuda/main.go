// Command garuda runs the lobby server: TCP transport, matchmaking rooms,
// and game-server load balancing.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcx/garuda/auth"
	"github.com/lcx/garuda/balancer"
	"github.com/lcx/garuda/config"
	"github.com/lcx/garuda/handler"
	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
	"github.com/lcx/garuda/msg"
	"github.com/lcx/garuda/net"
	"github.com/lcx/garuda/room"
)

type accountCfg struct {
	Email         string `mapstructure:"email"`
	Password      string `mapstructure:"password"`
	Nickname      string `mapstructure:"nickname"`
	CharacterType int32  `mapstructure:"characterType"`
	Hp            int32  `mapstructure:"hp"`
}

// lobbyCfg is the top-level server config, loaded under the "lobby" name.
type lobbyCfg struct {
	ConsulAddr  string       `mapstructure:"consulAddr"`
	MetricsAddr string       `mapstructure:"metricsAddr"`
	RecvPerSec  float64      `mapstructure:"recvPerSec"`
	RecvBurst   int          `mapstructure:"recvBurst"`
	Accounts    []accountCfg `mapstructure:"accounts"`
}

func (c *lobbyCfg) GetName() string { return "lobby" }

func (c *lobbyCfg) Validate() error { return nil }

func defaultLobbyCfg() *lobbyCfg {
	return &lobbyCfg{
		RecvPerSec: 2000,
		RecvBurst:  500,
	}
}

func main() {
	configPath := flag.String("configs", "./configs", "configuration directory")
	env := flag.String("env", "development", "environment name")
	flag.Parse()

	cm := config.NewConfigManager()
	cm.SetBasePath(*configPath)
	cm.SetEnvironment(*env)
	defer cm.Close()

	if err := log.InitializeWithConfigManager(cm); err != nil {
		_ = log.Initialize(nil)
		log.Warn().Err(err).Msg("logger config missing, using defaults")
	}

	cfg := defaultLobbyCfg()
	if err := cm.LoadConfig("lobby", cfg); err != nil {
		log.Warn().Err(err).Msg("lobby config missing, using defaults")
		cfg = defaultLobbyCfg()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store balancer.Store
	if cfg.ConsulAddr != "" {
		cs, err := balancer.NewConsulStore(cfg.ConsulAddr)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.ConsulAddr).Msg("consul store init failed")
		}
		store = cs
		log.Info().Str("addr", cfg.ConsulAddr).Msg("using consul fleet store")
	} else {
		store = balancer.NewMemoryStore()
		log.Info().Msg("using in-memory fleet store")
	}

	balancerCfg := &balancer.Cfg{}
	if err := cm.LoadConfig("balancer", balancerCfg); err != nil {
		log.Warn().Err(err).Msg("balancer config missing, using defaults")
		balancerCfg = &balancer.Cfg{}
	}
	lb, err := balancer.New(store, balancerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("balancer init failed")
	}
	go lb.RunHealthSweep(ctx)

	authn := auth.NewStaticAuthenticator(nil)
	for _, a := range cfg.Accounts {
		authn.AddAccount(a.Email, auth.Account{
			Password: a.Password,
			Profile: msg.UserSummary{
				Nickname: a.Nickname,
				Character: msg.CharacterSummary{
					CharacterType: a.CharacterType,
					Hp:            a.Hp,
				},
			},
		})
	}
	tokens := auth.NewTokenService(store)

	sessions := net.NewSessionRegistry()
	rooms := room.NewRegistry()

	dispatcher := net.NewDispatcher(msg.NewRegistry(),
		net.WithRecvLimit(cfg.RecvPerSec, cfg.RecvBurst),
		net.WithFailureFactory(handler.FailureResponse),
	)
	svc := handler.New(sessions, rooms, lb, authn, tokens)
	svc.RegisterAll(dispatcher)

	tcpCfg := &net.TCPTransportCfg{}
	if err := cm.LoadConfig("tcp", tcpCfg); err != nil {
		log.Warn().Err(err).Msg("tcp config missing, using defaults")
		tcpCfg = nil
	}
	transport := net.NewTCPTransport(tcpCfg, sessions, dispatcher, svc.OnSessionDispose)
	if tcpCfg != nil {
		cm.AddChangeListener(transport)
	}
	if err := transport.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("transport start failed")
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics exposed")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	transport.Stop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	log.Info().Msg("shutdown complete")
}
