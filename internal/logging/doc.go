// Package logger provides leveled, colored logging for envcli commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows all messages including debug details
//
// Warnings and errors are always shown. The key resolver reports the key it
// picked through Warnf whenever that key is not the configured primary key,
// so the notice is visible without any flag.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Fetched %d variables", count)
//
// Commands create a logger in their PersistentPreRun and pass it to
// workflows, which pass it on to the resolver as its Notifier.
package logger
