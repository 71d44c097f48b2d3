// Package mocks provides hand-written in-memory fakes and mocks for the
// application's interfaces, used across package tests.
package mocks
