// Package schedule extracts per-class lesson lists from the grids of a parsed
// schedule document and serves them through a TTL cache.
//
// A query goes through Service: the Cache is refreshed when stale, the day's
// grids are scanned in order, LocateHeader finds the row holding class codes
// and ExtractLessons walks the rows below it. The first grid whose header
// contains the class wins.
package schedule
