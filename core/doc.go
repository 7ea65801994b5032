// Package core contains the request dispatcher and the contracts it consumes.
// Transport and storage adapters depend on this package; core must not depend
// on any concrete transport or store.
package core
