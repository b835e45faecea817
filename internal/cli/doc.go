// Parses flags and configures logging for the pyship CLI.
//
// The tool accepts the following global flags:
//
//	-q, --quiet      Suppress informational output.
//	-v, --verbose    Enable verbose output.
//	-d, --debug      Enable debug output.
//	    --settings   Override the settings file path.
//
// The publish command is the default, so "pyship --test" publishes to the
// staging index without naming the command. Flags override build-time
// defaults set via linker flags. After parsing, the global logger is
// reconfigured to reflect the final level before any step runs.
package cli
