// Command displaylcdd drives a 16x2 HD44780 display over GPIO and serves the
// three command channels (print, clear, position) as named pipes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/flavioheleno/hd44780"
	"github.com/flavioheleno/hd44780/channel"
	"github.com/flavioheleno/hd44780/fifod"
)

var (
	configPath = flag.String("config", "/etc/displaylcd.toml", "Path to the TOML config file")
	fifoDir    = flag.String("dir", "", "Override the FIFO directory from the config")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cfg, err := fifod.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *fifoDir != "" {
		cfg.Dir = *fifoDir
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initialize periph host: %w", err)
	}

	pins, err := resolvePins(cfg.Pins)
	if err != nil {
		return err
	}

	dev, err := hd44780.New(pins, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := dev.Halt(); err != nil {
			log.Error().Err(err).Msg("halting display")
		}
	}()
	log.Info().Stringer("dev", dev).Msg("display initialized")

	// Startup greeting, same as the original module parameters. The
	// display truncates each line to its 16 visible cells.
	if _, err := dev.WriteString(cfg.Line1); err != nil {
		return err
	}
	if err := dev.MoveTo(hd44780.Cols + 1); err != nil {
		return err
	}
	if _, err := dev.WriteString(cfg.Line2); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := fifod.NewServer(channel.New(dev), cfg.Dir, log)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("shut down")
	return nil
}

// resolvePins looks up every configured pin by name. Any missing pin aborts
// startup before the display is touched.
func resolvePins(pc fifod.PinConfig) (hd44780.Pins, error) {
	lookup := func(name string, dst *gpio.PinOut, errp *error) {
		pin := gpioreg.ByName(name)
		if pin == nil && *errp == nil {
			*errp = fmt.Errorf("gpio pin %q not found", name)
		}
		*dst = pin
	}

	var pins hd44780.Pins
	var err error
	lookup(pc.RS, &pins.RS, &err)
	lookup(pc.EN, &pins.EN, &err)
	lookup(pc.D4, &pins.D4, &err)
	lookup(pc.D5, &pins.D5, &err)
	lookup(pc.D6, &pins.D6, &err)
	lookup(pc.D7, &pins.D7, &err)
	return pins, err
}
