// Provides platform-appropriate paths for pyship.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The tool name "pyship" is used as the subdirectory
// under each base path.
package paths
