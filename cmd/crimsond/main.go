package main

import (
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sean-lockwood/crimson-ins-submit/internal/config"
	"github.com/sean-lockwood/crimson-ins-submit/internal/gelf"
	"github.com/sean-lockwood/crimson-ins-submit/internal/server"
)

func main() {
	cfg := config.Load()

	log, err := buildLogger(cfg.GelfAddr)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(server.Config{
		Observatory: cfg.Observatory,
		JWTSecret:   cfg.JWTSecret,
		StagingDir:  cfg.StagingDir,
		Users:       cfg.Users,
	}, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}

	log.Info("crimsond starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("observatory", string(cfg.Observatory)),
	)
	if err := http.ListenAndServe(cfg.HTTPAddr, srv); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// buildLogger creates the production logger, teeing output to GELF when an
// endpoint is configured.
func buildLogger(gelfAddr string) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	if gelfAddr == "" {
		return logger, nil
	}

	gelfWriter, err := gelf.New(gelfAddr)
	if err != nil {
		logger.Warn("GELF init failed, logging to stderr only", zap.Error(err))
		return logger, nil
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	gelfCore := zapcore.NewCore(encoder, zapcore.AddSync(gelfWriter), zapcore.InfoLevel)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, gelfCore)
	})), nil
}
