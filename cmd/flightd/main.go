// Package main implements the flight daemon entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Moha1423/WIFI-drone/internal/actuator"
	"github.com/Moha1423/WIFI-drone/internal/actuator/fake"
	"github.com/Moha1423/WIFI-drone/internal/api"
	"github.com/Moha1423/WIFI-drone/internal/audit"
	"github.com/Moha1423/WIFI-drone/internal/auth"
	"github.com/Moha1423/WIFI-drone/internal/command"
	"github.com/Moha1423/WIFI-drone/internal/config"
	"github.com/Moha1423/WIFI-drone/internal/indicator"
	"github.com/Moha1423/WIFI-drone/internal/mixer"
	"github.com/Moha1423/WIFI-drone/internal/orientation"
	"github.com/Moha1423/WIFI-drone/internal/telemetry"
)

const (
	Version = "1.0.0"

	// simHistory is how many motor commands the simulated output keeps.
	simHistory = 1024
)

// Options are the command line flags.
type Options struct {
	Config string `short:"c" long:"config" description:"Config file (.yaml, .yml or .toml)"`
	Sim    bool   `long:"sim" description:"Simulated sensor and motors"`
	Addr   string `long:"addr" description:"HTTP listen address, overrides server.addr"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "WIFI-drone flight daemon"
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Fatalf("flightd: %v", err)
	}
}

func run(opts Options) error {
	log.Printf("Starting WIFI-drone flight daemon v%s", Version)

	// Step 1: Load configuration
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.Sim {
		cfg.Motors.Driver = config.DriverSim
		cfg.Sensor.Driver = config.DriverSim
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	setupLogging(cfg.Log)
	log.Println("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 2: Motors off before anything else
	output, err := openOutput(cfg.Motors)
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			log.Printf("Error closing motor output: %v", err)
		}
	}()
	if err := output.Write(ctx, mixer.Zero); err != nil {
		log.Printf("Initial motor stop failed: %v", err)
	}
	log.Printf("Motor output ready (%s)", cfg.Motors.Driver)

	// Step 3: Orientation sensor; blocks until the sensor answers
	source, err := openSource(ctx, cfg.Sensor)
	if err != nil {
		return fmt.Errorf("orientation sensor: %w", err)
	}
	log.Printf("Orientation source ready (%s)", cfg.Sensor.Driver)

	// Step 4: Telemetry hub and bridges
	hub := telemetry.NewHub(cfg.Telemetry)
	defer hub.Stop()

	ws := telemetry.NewWebSocketStream()
	defer ws.Close()
	hub.AddSink(ws)

	if cfg.MQTT.Broker != "" {
		client, err := telemetry.ConnectMQTT(cfg.MQTT)
		if err != nil {
			log.Printf("MQTT bridge disabled: %v", err)
		} else {
			bridge := telemetry.NewMQTTBridge(client, cfg.MQTT.Topic)
			hub.AddSink(bridge)
			go bridge.Run(ctx)
			defer client.Disconnect(250)
		}
	}

	if cfg.MAVLink.Endpoint != "" {
		bridge, err := telemetry.DialMAVLink(cfg.MAVLink)
		if err != nil {
			log.Printf("MAVLink bridge disabled: %v", err)
		} else {
			hub.AddSink(bridge)
			go bridge.Run(ctx)
		}
	}
	log.Println("Telemetry hub initialized")

	// Step 5: Audit logger
	auditLogger, err := audit.NewLogger(cfg.Audit)
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}
	defer func() {
		if err := auditLogger.Close(); err != nil {
			log.Printf("Error closing audit logger: %v", err)
		}
	}()
	log.Printf("Audit logger writing to %s", auditLogger.GetFilePath())

	// Step 6: Flight orchestrator
	orchestrator := command.NewOrchestrator(output, source, cfg.Flight)
	orchestrator.SetAuditLogger(auditLogger)
	orchestrator.SetTelemetry(hub, cfg.Telemetry.OrientationInterval)
	hub.SetSnapshotFunc(orchestrator.Snapshot)

	if cfg.LED.Enabled {
		led, closeGPIO, err := indicator.OpenGPIO(cfg.LED.Pin)
		if err != nil {
			log.Printf("Status LED disabled: %v", err)
		} else {
			orchestrator.SetIndicator(led)
			go led.Run(ctx)
			defer func() { _ = closeGPIO() }()
		}
	}

	if err := orchestrator.Start(ctx); err != nil {
		log.Printf("Motor zero on start failed: %v", err)
	}

	// Step 7: API server
	server := api.NewServer(orchestrator, hub, cfg.Server)
	server.SetWebSocket(ws)
	server.SetAssets(cfg.Assets.Dir)
	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(cfg.Auth)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		server.SetAuth(auth.NewMiddleware(verifier))
		log.Printf("Bearer token auth enabled (%s)", cfg.Auth.Algorithm)
	}

	// Step 8: Control loop and HTTP server
	loopDone := make(chan struct{})
	go func() {
		orchestrator.Run(ctx)
		close(loopDone)
	}()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	log.Printf("Flight daemon started on %s (failsafe %v, tick %v)",
		cfg.Server.Addr, cfg.Flight.FailsafeTimeout, cfg.Flight.PollInterval)
	log.Printf("Health endpoint: http://localhost%s/api/v1/health", cfg.Server.Addr)

	var runErr error
	select {
	case <-ctx.Done():
		log.Printf("Received shutdown signal, disarming...")
	case runErr = <-serverErr:
		log.Printf("Server error: %v", runErr)
		stop()
	}
	<-loopDone

	// Graceful shutdown: motors first
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping motors: %v", err)
	}
	log.Println("Vehicle disarmed")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	log.Println("Flight daemon shutdown complete")
	return runErr
}

func setupLogging(cfg config.LogConfig) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.File == "" {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}))
}

func openOutput(cfg config.MotorsConfig) (actuator.Output, error) {
	switch cfg.Driver {
	case config.DriverPCA9685:
		out, err := actuator.OpenPCA9685(cfg)
		if err != nil {
			return nil, fmt.Errorf("motor output: %w", err)
		}
		return out, nil
	case config.DriverSim:
		return fake.NewBoundedRecorder(simHistory), nil
	default:
		return nil, fmt.Errorf("unknown motor driver %q", cfg.Driver)
	}
}

func openSource(ctx context.Context, cfg config.SensorConfig) (orientation.Source, error) {
	switch cfg.Driver {
	case config.DriverMPU6050:
		m, err := orientation.OpenMPU6050(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.DriverSim:
		return orientation.NewSim(), nil
	default:
		return nil, errors.New("unknown sensor driver " + cfg.Driver)
	}
}
