// Package cookiejar stores cookies across requests made by a client
// instance.
//
// A jar keys cookies by name: the last cookie absorbed under a name wins.
// Jars never evict expired cookies on their own; callers clear them
// explicitly. A jar can be inert ("off"), process-local ("memory", the
// default) or backed by a JSON file for cross-process persistence.
package cookiejar
