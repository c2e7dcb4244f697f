// Package devauthority is a stand-in permission authority for local
// development and tests. It serves YAML fixtures over the same HTTP contract
// as the real service.
package devauthority
