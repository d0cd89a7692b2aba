// Package testsupport holds fixtures shared by package tests: complete
// configuration records pointing at an httptest server, and sized files for
// exercising import limits.
package testsupport
