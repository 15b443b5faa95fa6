package domain

// KeyPrefix namespaces every key the service writes to its key-value store.
// Overridable from config so several deployments can share one Redis.
var KeyPrefix = "orda:"
