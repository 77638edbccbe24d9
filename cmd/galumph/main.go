// Command galumph is the UCI chess engine binary.
package main

import (
	"flag"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/profile"

	"github.com/spamdrew128/Galumph/internal/config"
	"github.com/spamdrew128/Galumph/internal/uci"
)

var (
	configPath  = flag.String("config", "galumph.toml", "path to the TOML configuration file")
	profileMode = flag.String("profile", "", "enable profiling: cpu or mem")
)

var log = logging.MustGetLogger("galumph")

func main() {
	flag.Parse()

	setupLogging()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Warningf("unknown profile mode %q, profiling disabled", *profileMode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warningf("config %s not loaded: %v", *configPath, err)
		cfg = config.Default()
	}

	handler := uci.New(cfg)

	// "galumph bench [depth]" runs the fixed-depth benchmark and exits.
	if args := flag.Args(); len(args) > 0 && args[0] == "bench" {
		handler.RunBench(args[1:])
		return
	}

	handler.Run()
}

// setupLogging routes diagnostics to stderr so stdout stays clean for the
// UCI protocol.
func setupLogging() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, format))
	logging.SetLevel(logging.INFO, "galumph")
}
