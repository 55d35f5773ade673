package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/weifengdq/slcanx-go"
	"github.com/weifengdq/slcanx-go/pkg/transport/serial"
)

func main() {
	log.SetLevel(log.InfoLevel)

	device := flag.String("d", "/dev/ttyACM0", "serial device path")
	baud := flag.Uint("b", 1000000, "serial baud rate")
	configPath := flag.String("c", "", "port configuration INI file (optional)")
	flag.Parse()

	dev, err := serial.Open(*device, uint32(*baud))
	if err != nil {
		log.Fatalf("could not open %s: %v", *device, err)
	}
	defer dev.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	port := slcanx.NewPort(logger)
	dev.BindPort(port)

	if err := port.Attach(dev, nil); err != nil {
		log.Fatalf("attach failed: %v", err)
	}
	defer port.Detach()

	if *configPath != "" {
		cfg, err := slcanx.LoadPortConfig(*configPath)
		if err != nil {
			log.Fatalf("could not load config %s: %v", *configPath, err)
		}
		if err := cfg.Apply(port); err != nil {
			log.Fatalf("could not apply config: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := dev.ReceiveLoop(ctx); err != nil && ctx.Err() == nil {
			log.Errorf("receive loop stopped: %v", err)
		}
	}()

	for i := 0; i < slcanx.MaxChannels; i++ {
		ch := port.Channel(i)
		if ch == nil {
			continue
		}
		if err := ch.Open(ctx); err != nil {
			log.Warnf("channel %d open failed: %v", i, err)
		}
	}

	log.Infof("slcanxd attached to %s", *device)
	<-ctx.Done()
	log.Info("shutting down")
}
