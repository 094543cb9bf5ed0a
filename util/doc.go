// Package util holds small helpers shared by the datafeed config layers:
// byte sizes written as "64MB", secret masking for logs and pointer
// helpers for optional config fields.
package util
