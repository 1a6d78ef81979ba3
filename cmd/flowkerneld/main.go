// Command flowkerneld runs the permissioned-pull value-flow kernel: the
// seven flow/* components wired to persistence and an event fan-out, fronted
// by the admin HTTP/WebSocket API.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lukechampine.com/blake3"

	"flowkernel/adminapi"
	"flowkernel/adminapi/config"
	"flowkernel/core/clock"
	"flowkernel/core/events"
	"flowkernel/crypto"
	"flowkernel/flow/channel"
	"flowkernel/flow/consent"
	"flowkernel/flow/domain"
	"flowkernel/flow/intent"
	"flowkernel/flow/mesh"
	"flowkernel/flow/policy"
	"flowkernel/flow/pull"
	"flowkernel/flow/router"
	"flowkernel/ledger"
	"flowkernel/observability/logging"
	"flowkernel/observability/metrics"
	"flowkernel/observability/otel"
	"flowkernel/storage/sqlite"
	"flowkernel/webhooks"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "keygen" {
		runKeygen(os.Args[2:])
		return
	}

	var daemonCfgPath string
	flag.StringVar(&daemonCfgPath, "config", "flowkernel.toml", "path to flowkerneld configuration")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("FLOWKERNEL_ENV"))
	logger := logging.Setup("flowkerneld", env, nil)

	dcfg, err := loadDaemonConfig(daemonCfgPath)
	if err != nil {
		logger.Error("load daemon config", "error", err)
		os.Exit(1)
	}

	controllerKeyBytes, err := hex.DecodeString(dcfg.ControllerKey)
	if err != nil {
		logger.Error("decode controller key", "error", err)
		os.Exit(1)
	}
	controllerKey, err := crypto.PrivateKeyFromBytes(controllerKeyBytes)
	if err != nil {
		logger.Error("parse controller key", "error", err)
		os.Exit(1)
	}
	selfKeyBytes, err := hex.DecodeString(dcfg.SelfKey)
	if err != nil {
		logger.Error("decode self key", "error", err)
		os.Exit(1)
	}
	selfKey, err := crypto.PrivateKeyFromBytes(selfKeyBytes)
	if err != nil {
		logger.Error("parse self key", "error", err)
		os.Exit(1)
	}
	controller := controllerKey.PubKey().Address()
	self := selfKey.PubKey().Address()

	saltDigest := blake3.Sum256([]byte(dcfg.DomainSalt))
	domainDescriptor, err := crypto.HashFromBytes(saltDigest[:])
	if err != nil {
		logger.Error("derive domain descriptor", "error", err)
		os.Exit(1)
	}

	sinks := []events.Emitter{metrics.NewEmitter()}

	var sqliteStore *sqlite.Store
	if dcfg.SQLitePath != "" {
		if err := os.MkdirAll(dcfg.DataDir, 0o755); err != nil {
			logger.Error("create data dir", "error", err)
			os.Exit(1)
		}
		sqliteStore, err = sqlite.Open(dcfg.SQLitePath)
		if err != nil {
			logger.Error("open sqlite store", "error", err)
			os.Exit(1)
		}
		defer sqliteStore.Close()
		sinks = append(sinks, sqliteStore)
	}

	if dcfg.WebhookURL != "" {
		dispatcher, err := webhooks.NewDispatcher(dcfg.WebhookURL, []byte(dcfg.WebhookSecret))
		if err != nil {
			logger.Error("construct webhook dispatcher", "error", err)
			os.Exit(1)
		}
		defer dispatcher.Close()
		sinks = append(sinks, dispatcher)
	}

	stream := adminapi.NewEventStream()
	sinks = append(sinks, stream)
	emitter := events.MultiEmitter{Emitters: sinks}

	tokens := ledger.NewMemoryLedger()

	consentRegistry := consent.NewRegistry(controller)
	if sqliteStore != nil {
		consentRegistry.SetState(sqliteStore)
	} else {
		consentRegistry.SetState(consent.NewMemoryStore())
	}
	consentRegistry.SetEmitter(emitter)

	pullExecutor := pull.NewExecutor(consentRegistry, tokens, domainDescriptor, self)
	pullExecutor.SetEmitter(emitter)

	channelEngine := channel.NewEngine(tokens)
	channelEngine.SetState(channel.NewMemoryStore())
	channelEngine.SetEmitter(emitter)

	universalClock, err := clock.New(clock.Config{EpochLength: 3600, GenesisTimestamp: 0})
	if err != nil {
		logger.Error("construct clock", "error", err)
		os.Exit(1)
	}
	policyEnforcer := policy.NewEnforcer(universalClock)
	policyEnforcer.SetState(policy.NewMemoryStore())
	policyEnforcer.SetEmitter(emitter)
	channelEngine.SetPolicy(policyEnforcer)

	domainDirectory := domain.NewDirectory(controller)

	intentRegistry := intent.NewRegistry(controller, domainDescriptor)
	if sqliteStore != nil {
		intentRegistry.SetState(sqliteStore.Intents())
	} else {
		intentRegistry.SetState(intent.NewMemoryStore())
	}
	intentRegistry.SetEmitter(emitter)

	rebalancer := intent.NewRebalancer(controller, domainDirectory, consentRegistry, intentRegistry)
	rebalancer.SetEmitter(emitter)

	adaptiveRouter := router.NewRouter(controller, self, channelEngine)
	adaptiveRouter.SetEmitter(emitter)

	settlementMesh := mesh.NewMesh(controller, adaptiveRouter)
	settlementMesh.SetEmitter(emitter)

	kernel := adminapi.Kernel{
		Consent:    consentRegistry,
		Pull:       pullExecutor,
		Channel:    channelEngine,
		Policy:     policyEnforcer,
		Domain:     domainDirectory,
		Intent:     intentRegistry,
		Rebalancer: rebalancer,
		Router:     adaptiveRouter,
		Mesh:       settlementMesh,
	}

	adminCfg, err := config.Load(dcfg.AdminConfig)
	if err != nil {
		logger.Error("load admin api config", "error", err)
		os.Exit(1)
	}

	if adminCfg.Observability.Tracing || adminCfg.Observability.Metrics {
		otelCfg := otel.Config{
			ServiceName: adminCfg.Observability.ServiceName,
			Environment: env,
			Endpoint:    adminCfg.Observability.OTLPEndpoint,
			Insecure:    adminCfg.Observability.OTLPInsecure,
			Headers:     otel.ParseHeaders(adminCfg.Observability.OTLPHeaders),
			Metrics:     adminCfg.Observability.Metrics,
			Traces:      adminCfg.Observability.Tracing,
		}
		shutdownTelemetry, err := otel.Init(context.Background(), otelCfg)
		if err != nil {
			logger.Error("init telemetry", "error", err)
			os.Exit(1)
		}
		defer shutdownTelemetry(context.Background())
	}

	server, err := adminapi.NewServer(adminCfg, kernel, stream, logger)
	if err != nil {
		logger.Error("construct admin server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("flowkerneld listening", "address", server.Addr().String())
	if err := server.Serve(ctx); err != nil {
		logger.Error("admin server exited", "error", err)
		os.Exit(1)
	}
}
