package boot

import "github.com/GoCodeAlone/boot/logging"

// Logger defines the interface for application logging. Arguments after
// the message are key/value pairs:
//
//	logger.Info("Application started", "name", name, "port", port)
//
// Any structured logger can be adapted; the default is zap, configured from
// the logger.* bootstrap properties.
type Logger = logging.Logger
