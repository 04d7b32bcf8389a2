package log

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
)

const module = "slackin"

var Log = logging.MustGetLogger(module)
var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{shortfunc} ▶ %{level:.4s} %{id:03x}%{color:reset} %{message}`,
)

func init() {
	logging.SetBackend(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format))
}

// SetLevel parses a go-logging level name (DEBUG, INFO, WARNING, ...) and applies it to the
// slackin logger.
func SetLevel(name string) error {
	level, err := logging.LogLevel(name)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %s", name, err)
	}
	logging.SetLevel(level, module)
	return nil
}
