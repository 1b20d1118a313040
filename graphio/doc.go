// Package graphio loads road graphs from JSON documents and caches the
// compiled form on disk.
//
// The JSON interchange format mirrors what an OSM extract pipeline
// produces: a flat node list (id, lat, lon) and a flat edge list (from, to,
// numeric attrs). Decode compiles a document into a graph.Graph.
//
// Compiling large documents is much slower than reading them back, so
// FileSource can keep a DiskCache of compiled graphs (zstd-compressed gob,
// .pgz files). Cache entries are keyed by source name and format version;
// stale or corrupt entries fall back to a fresh decode. CachingSource adds
// an in-memory LRU in front of any Source.
package graphio
