// Package cli implements the permauthority command tree with cobra.
package cli
