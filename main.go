package main

import (
	"flag"
	"strings"

	"trackify/config"
	"trackify/database"
	"trackify/middleware"
	"trackify/router"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// @title Trackify API
// @version 1.0
// @description Personal finance tracker: accounts, transactions, categories, statistics and exports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "path to an external config file (optional)")
	flag.StringVar(&configFile, "c", "", "path to an external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		logrus.Info("Trackify v1.0.0")
		return
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Local .env, if present, feeds the TRACKIFY_* env overrides.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	// Command-line port overrides the config.
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		logrus.Fatalf("init database: %v", err)
	}

	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg)

	logrus.Infof("Trackify listening on %s", cfg.Server.Port)
	logrus.Infof("Swagger UI: http://localhost%s/swagger/index.html", cfg.Server.Port)

	if err := r.Run(cfg.Server.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
