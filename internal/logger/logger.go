package logger

import (
	"fmt"
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// Options configure the package level logrus logger.
type Options struct {
	Level  string
	Format string
	File   string
}

// Init applies opts to the standard logger. When File is set, output goes to
// daily rotated files named File.YYYYMMDD with File linked to the newest one.
func Init(opts Options) error {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if opts.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		return nil
	}
	w, err := rotating(opts.File)
	if err != nil {
		return err
	}
	log.SetOutput(w)
	return nil
}

func rotating(name string) (io.Writer, error) {
	w, err := rotatelogs.New(
		name+".%Y%m%d",
		rotatelogs.WithLinkName(name),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", name, err)
	}
	return w, nil
}
