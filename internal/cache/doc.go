// Package cache provides the bounded LRU lookup cache for loaded
// assets.
//
// The cache is an acceleration structure, not the owner of asset
// lifetime: a miss does not imply the asset is unloaded, and eviction
// from the cache never unloads anything. It is bounded by entry count
// and evicts the single least-recently-accessed entry when insertion
// would exceed the bound.
package cache
