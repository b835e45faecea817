// Loads the optional pyship settings file.
//
// Settings live in a TOML file under the user's config directory (see the
// paths package) and override the built-in defaults: the Python interpreter
// to drive, and the repository and simple-index URLs of the production and
// staging targets. A missing settings file is not an error; the defaults
// publish to PyPI and TestPyPI with "python3".
//
// Example settings.toml:
//
//	interpreter = "python3.12"
//
//	[indexes.staging]
//	repository-url = "https://pypi.internal.example.com/staging/"
//	simple-url = "https://pypi.internal.example.com/staging/simple/"
package settings
