package capped

import (
	"time"

	"github.com/probeq/profiledb/pkg/logging"
)

type systemClockForTests struct{}

func (systemClockForTests) Now() time.Time {
	return time.Now()
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func discardLogger() logging.Logger {
	return logging.NewJSONLogger(discardWriter{}, logging.ErrorLevel)
}
