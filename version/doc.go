// Package version reports the build of the datafeed binary.
//
// Version, git commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/datafeed/version.Version=1.0.0" ./cmd/datafeed
//
// Unset values fall back to the VCS stamp embedded by the Go toolchain.
package version
