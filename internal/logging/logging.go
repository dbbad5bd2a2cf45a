// Package logging configures the standard logger for the command binaries.
package logging

import (
	"fmt"
	"log"
	"os"
)

// InitLog sends the standard logger to dest with prefix. An empty dest keeps
// stderr. The returned file should be closed on exit.
func InitLog(dest, prefix string) (*os.File, error) {
	log.SetPrefix(prefix)
	if dest == "" {
		return nil, nil
	}
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}
