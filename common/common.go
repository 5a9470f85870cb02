package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/multiversx/mx-chain-logger-go/file"
)

// AttachFileLogger attaches, if required, a log file
func AttachFileLogger(
	log logger.Logger,
	defaultLogsPath string,
	logFilePrefix string,
	saveLogFile bool,
	workingDir string) (FileLoggingHandler, error) {
	var err error
	var logFile FileLoggingHandler
	if saveLogFile {
		argsFileLogging := file.ArgsFileLogging{
			WorkingDir:      workingDir,
			DefaultLogsPath: defaultLogsPath,
			LogFilePrefix:   logFilePrefix,
		}
		logFile, err = file.NewFileLogging(argsFileLogging)
		if err != nil {
			return nil, fmt.Errorf("%w creating a log file", err)
		}
	}

	err = logger.SetDisplayByteSlice(logger.ToHex)
	log.LogIfError(err)

	return logFile, nil
}

// ReadEnvFile will read the file contents in the provided map
func ReadEnvFile(envFile string, m map[string]string) error {
	err := godotenv.Load(envFile)
	if err != nil {
		return err
	}

	for k := range m {
		val := os.Getenv(k)
		if len(val) == 0 {
			return fmt.Errorf("%s is not set in the .env file", k)
		}

		m[k] = val
	}

	return nil
}

// PollLoopStarter starts a go routine that calls the provided handler once immediately and then on every
// tick of a fixed-interval ticker. Ticks that fire while a previous call is still running are dropped,
// not queued: the next call happens on the next interval boundary. The loop stops when the context is
// done; the provided wait group tracks the go routine so callers can wait for an in-flight call to
// finish on shutdown.
func PollLoopStarter(ctx context.Context, wg *sync.WaitGroup, handler func(ctx context.Context), interval time.Duration) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// the ticker channel buffers one tick, so a tick that fired during a slow handler
		// call must be drained or it would start the next cycle immediately
		drainStaleTick := func() {
			select {
			case <-ticker.C:
			default:
			}
		}

		handler(ctx)
		drainStaleTick()

		for {
			select {
			case <-ticker.C:
				handler(ctx)
				drainStaleTick()
			case <-ctx.Done():
				return
			}
		}
	}()
}
