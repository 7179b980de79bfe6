// Package integrationtests drives the whole application over manifests
// written to a temporary directory.
package integrationtests
