// Models the destination package indexes.
//
// A [Target] names one of the two supported destinations: the production
// index (PyPI) or the staging index (TestPyPI). Resolving a target yields
// an [Index] carrying the repository upload endpoint and the simple-index
// URL used for install instructions. Both URLs can be overridden through
// the settings file for deployments that publish to a private mirror.
package index
