package role

// Fold exposes the alias lookup key to external tests.
var Fold = fold
